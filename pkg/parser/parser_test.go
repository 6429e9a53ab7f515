package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSimpleFunction(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte("def hello(name, greeting=\"hi\"):\n    return greeting + name\n")
	result, err := p.Parse(code, "hello.py")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.HasSyntaxError() {
		t.Error("unexpected syntax error for valid code")
	}

	functions := GetFunctions(result)
	if len(functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(functions))
	}
	fn := functions[0]
	if fn.Name != "hello" {
		t.Errorf("Name = %q, want %q", fn.Name, "hello")
	}
	if fn.StartLine != 1 {
		t.Errorf("StartLine = %d, want 1", fn.StartLine)
	}
	if fn.Params != 2 {
		t.Errorf("Params = %d, want 2", fn.Params)
	}
	if fn.Body == nil {
		t.Error("Body is nil")
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("def broken(:\n"), "broken.py")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !result.HasSyntaxError() {
		t.Error("expected HasSyntaxError for invalid code")
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte{0xff, 0xfe, 0x00}, "bad.py")
	if err == nil {
		t.Fatal("expected encoding error")
	}
}

func TestGetClasses(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte(`class Animal:
    def speak(self):
        pass


class Dog(Animal, metaclass=type):
    def speak(self):
        return "woof"
`)
	result, err := p.Parse(code, "animals.py")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	classes := GetClasses(result)
	if len(classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(classes))
	}
	if classes[0].Name != "Animal" || classes[0].Bases != 0 {
		t.Errorf("Animal = %+v, want 0 bases", classes[0])
	}
	if classes[1].Name != "Dog" {
		t.Errorf("second class = %q, want Dog", classes[1].Name)
	}
	if classes[1].Bases != 1 {
		t.Errorf("Dog bases = %d, want 1 (metaclass kwarg excluded)", classes[1].Bases)
	}
}

func TestNestedFunctionsInOrder(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte(`def outer():
    def inner():
        pass
    return inner

def last():
    pass
`)
	result, err := p.Parse(code, "nested.py")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	functions := GetFunctions(result)
	names := make([]string, len(functions))
	for i, fn := range functions {
		names[i] = fn.Name
	}
	want := []string{"outer", "inner", "last"}
	if len(names) != len(want) {
		t.Fatalf("functions = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("functions[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	p := New()
	defer p.Close()

	path := filepath.Join(t.TempDir(), "mod.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if result.Path != path {
		t.Errorf("Path = %q, want %q", result.Path, path)
	}

	if !IsPythonFile(path) {
		t.Error("IsPythonFile(.py) = false")
	}
	if IsPythonFile("readme.md") {
		t.Error("IsPythonFile(.md) = true")
	}
}
