package ident

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"div", []string{"div"}},
		{"my-widget", []string{"my", "widget"}},
		{"my_attr", []string{"my", "attr"}},
		{"divBox", []string{"div", "Box"}},
		{"DivBox", []string{"Div", "Box"}},
		{"HTMLElement", []string{"HTML", "Element"}},
		{"h1", []string{"h1"}},
		{"grid2Col", []string{"grid2", "Col"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Words(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Words(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestKebab(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"div", "div"},
		{"myAttr", "my-attr"},
		{"my_attr", "my-attr"},
		{"DivBox", "div-box"},
		{"first-second-third", "first-second-third"},
		{"HTMLElement", "html-element"},
		{"h1", "h1"},
	}

	for _, tt := range tests {
		if got := Kebab(tt.input); got != tt.expected {
			t.Errorf("Kebab(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUpperCamel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"button", "Button"},
		{"Button", "Button"},
		{"first-second", "FirstSecond"},
		{"my-attr", "MyAttr"},
		{"HTML", "Html"},
		{"h1", "H1"},
	}

	for _, tt := range tests {
		if got := UpperCamel(tt.input); got != tt.expected {
			t.Errorf("UpperCamel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsKebab(t *testing.T) {
	kebab := []string{"div", "my-widget", "first-second-third", "h1"}
	for _, s := range kebab {
		if !IsKebab(s) {
			t.Errorf("IsKebab(%q) = false, want true", s)
		}
	}

	notKebab := []string{"myAttr", "My-Widget", "my_attr", "DivBox"}
	for _, s := range notKebab {
		if IsKebab(s) {
			t.Errorf("IsKebab(%q) = true, want false", s)
		}
	}
}

func TestIsUpperCamel(t *testing.T) {
	camel := []string{"Button", "DivBox", "Identifier", "H1"}
	for _, s := range camel {
		if !IsUpperCamel(s) {
			t.Errorf("IsUpperCamel(%q) = false, want true", s)
		}
	}

	notCamel := []string{"button", "divBox", "my-widget", "h1", "HTML"}
	for _, s := range notCamel {
		if IsUpperCamel(s) {
			t.Errorf("IsUpperCamel(%q) = true, want false", s)
		}
	}
}
