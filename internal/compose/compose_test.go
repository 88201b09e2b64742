package compose

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
	"variaredirect/internal/models"
)

var fixedDate = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.Local)

func strPtr(s string) *string { return &s }

func TestComposeDir(t *testing.T) {
	t.Parallel()

	ev := models.DownloadEvent{URL: "https://Files.Example.com/a/b.zip", Filename: "b.zip"}

	tests := []struct {
		name     string
		base     string
		byDate   bool
		byDomain bool
		override *models.FilterResult
		want     string
	}{
		{name: "date folder appended to base", base: "dl", byDate: true, want: "dl/2024-03-05"},
		{name: "empty base date only", byDate: true, want: "2024-03-05"},
		{name: "empty base domain only", byDomain: true, want: "files.example.com"},
		{name: "both toggles", base: "/srv/dl", byDate: true, byDomain: true, want: "/srv/dl/2024-03-05/files.example.com"},
		{name: "trailing slash base", base: "dl/", byDate: true, want: "dl/2024-03-05"},
		{name: "no toggles", base: "dl", want: "dl"},
		{name: "nothing", want: ""},
		{name: "override dir", base: "dl", override: &models.FilterResult{Dir: strPtr("Movies")}, want: "Movies"},
		{name: "override with toggles", base: "dl", byDate: true, override: &models.FilterResult{Dir: strPtr("Movies")}, want: "Movies/2024-03-05"},
		{name: "empty override ignored", base: "dl", override: &models.FilterResult{Dir: strPtr("")}, want: "dl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := models.DefaultSettings()
			s.DownloadDirectory = tt.base
			s.OrganizeByDate = tt.byDate
			s.OrganizeByDomain = tt.byDomain

			if got := Dir(ev, s, tt.override, fixedDate); got != tt.want {
				t.Fatalf("Dir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		override *models.FilterResult
		want     string
	}{
		{"file.zip", nil, "file.zip"},
		{"/home/me/Downloads/file.zip", nil, "file.zip"},
		{`C:\Users\me\Downloads\file.zip`, nil, "file.zip"},
		{`mixed/dir\file.zip`, nil, "file.zip"},
		{"file.zip", &models.FilterResult{Filename: strPtr("x.mkv")}, "x.mkv"},
		{"file.zip", &models.FilterResult{Filename: strPtr("")}, "file.zip"},
	}
	for _, tt := range tests {
		if got := Filename(models.DownloadEvent{Filename: tt.filename}, tt.override); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

// TestScriptOverridesWin checks script overrides win over settings.
func TestScriptOverridesWin(t *testing.T) {
	t.Parallel()

	s := models.DefaultSettings()
	s.DownloadDirectory = "/data"
	override := &models.FilterResult{Skip: false, Dir: strPtr("Movies"), Filename: strPtr("x.mkv")}

	p := Compose(models.DownloadEvent{URL: "https://good.com/f.zip", Filename: "f.zip"}, s, override, fixedDate)
	if p.Dir != "Movies" || p.Out != "x.mkv" {
		t.Fatalf("got %+v", p)
	}
}

func TestComposeIdempotent(t *testing.T) {
	t.Parallel()

	s := models.DefaultSettings()
	s.DownloadDirectory = "dl"
	s.OrganizeByDate = true
	s.OrganizeByDomain = true
	ev := models.DownloadEvent{URL: "https://good.com/f.zip", Filename: "sub/f.zip"}

	a := Compose(ev, s, nil, fixedDate)
	b := Compose(ev, s, nil, fixedDate)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("compose not idempotent: %+v vs %+v", a, b)
	}
}

func TestComposeOmitsEmptyDir(t *testing.T) {
	t.Parallel()

	p := Compose(models.DownloadEvent{URL: "https://good.com/f.zip", Filename: "f.zip"}, models.DefaultSettings(), nil, fixedDate)
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), `"dir"`) {
		t.Fatalf("dir should be omitted when empty: %s", b)
	}
	if !strings.Contains(string(b), `"header":[]`) {
		t.Fatalf("header should always be present: %s", b)
	}
}
