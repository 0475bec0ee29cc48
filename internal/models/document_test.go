package models

import (
	"strings"
	"testing"
	"time"
)

func validFM() FrontMatter {
	return FrontMatter{
		Title:    "Building a REST API with Gin",
		Date:     time.Date(2024, 2, 21, 0, 0, 0, 0, time.UTC),
		Category: "go",
		Tags:     []string{"go", "gin"},
		Keywords: []string{"web framework", "router"},
	}
}

func TestFrontMatterValidate_OK(t *testing.T) {
	if err := validFM().Validate(); err != nil {
		t.Fatalf("valid front matter rejected: %v", err)
	}
}

func TestFrontMatterValidate_MissingTitle(t *testing.T) {
	fm := validFM()
	fm.Title = ""
	err := fm.Validate()
	if err == nil {
		t.Fatal("expected error for missing title")
	}
	if !strings.Contains(err.Error(), "title") {
		t.Errorf("error should name the title field: %v", err)
	}
}

func TestFrontMatterValidate_ZeroDate(t *testing.T) {
	fm := validFM()
	fm.Date = time.Time{}
	if err := fm.Validate(); err == nil {
		t.Fatal("expected error for zero date")
	}
}

func TestFrontMatterValidate_MissingCategory(t *testing.T) {
	fm := validFM()
	fm.Category = ""
	if err := fm.Validate(); err == nil {
		t.Fatal("expected error for missing category")
	}
}

func TestFrontMatterValidate_EmptyTag(t *testing.T) {
	fm := validFM()
	fm.Tags = []string{"go", ""}
	if err := fm.Validate(); err == nil {
		t.Fatal("expected error for empty tag")
	}
}

func TestDocumentValidate_OK(t *testing.T) {
	d := Document{
		Path:        "posts/gin.md",
		FrontMatter: validFM(),
		Body:        "Some body text.\n",
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
}

func TestDocumentValidate_BlankBody(t *testing.T) {
	d := Document{
		Path:        "posts/gin.md",
		FrontMatter: validFM(),
		Body:        "  \n\t\n",
	}
	err := d.Validate()
	if err == nil {
		t.Fatal("expected error for blank body")
	}
	if !strings.Contains(err.Error(), "body") {
		t.Errorf("error should name the body field: %v", err)
	}
}

func TestDocumentValidate_BadExtension(t *testing.T) {
	d := Document{
		Path:        "posts/gin.txt",
		FrontMatter: validFM(),
		Body:        "text",
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for non-.md path")
	}
}

func TestDocumentValidate_InvalidFrontMatterPropagates(t *testing.T) {
	fm := validFM()
	fm.Title = ""
	d := Document{Path: "a.md", FrontMatter: fm, Body: "text"}
	if err := d.Validate(); err == nil {
		t.Fatal("front-matter errors should fail document validation")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Building a REST API with Gin", "building-a-rest-api-with-gin"},
		{"Task Queues with Django & Celery", "task-queues-with-django-celery"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Ünïcode Títle", "n-code-t-tle"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
