package assets

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalsfoundry/station-tracker/internal/logging"
)

func TestFetcherReadsLocalFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "earth.jpg"), []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &Fetcher{BaseDir: dir}
	data, err := f.Fetch(context.Background(), "earth.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, []byte("jpeg-bytes")) {
		t.Fatalf("got %q", data)
	}

	if _, err := f.Fetch(context.Background(), "missing.jpg"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFetcherFetchesHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/textures/earth.jpg":
			w.Write([]byte("remote-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &Fetcher{Client: srv.Client()}
	data, err := f.Fetch(context.Background(), srv.URL+"/textures/earth.jpg")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, []byte("remote-bytes")) {
		t.Fatalf("got %q", data)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/nope"); err == nil {
		t.Fatal("expected an error for a 404")
	}
}

func TestBuiltinLoadersResolveTypedHandles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"earth.jpg": "texture-bytes",
		"stars.hdr": "env-bytes",
		"iss.glb":   "model-bytes",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := NewCoordinator(logging.Noop(), nil)
	RegisterBuiltinLoaders(c, &Fetcher{BaseDir: dir})
	if err := c.Define(
		Descriptor{Name: "earth-day", Kind: KindTexture, URL: "earth.jpg"},
		Descriptor{Name: "earth-night", Kind: KindTexture, URL: "earth.jpg", Options: Options{ColorSpace: "linear"}},
		Descriptor{Name: "starfield", Kind: KindEnvironmentMap, URL: "stars.hdr"},
		Descriptor{Name: "station", Kind: KindModel, URL: "iss.glb"},
	); err != nil {
		t.Fatalf("Define: %v", err)
	}

	handles, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(handles) != 4 {
		t.Fatalf("resolved %d handles, want 4", len(handles))
	}

	day, ok := handles["earth-day"].(*Texture)
	if !ok {
		t.Fatalf("earth-day is %T, want *Texture", handles["earth-day"])
	}
	if day.ColorSpace != "srgb" {
		t.Fatalf("untagged texture color space = %q, want srgb", day.ColorSpace)
	}
	night := handles["earth-night"].(*Texture)
	if night.ColorSpace != "linear" {
		t.Fatalf("tagged texture color space = %q, want linear", night.ColorSpace)
	}
	env, ok := handles["starfield"].(*EnvironmentMap)
	if !ok || !bytes.Equal(env.Data, []byte("env-bytes")) {
		t.Fatalf("starfield = %T %v", handles["starfield"], handles["starfield"])
	}
	mdl, ok := handles["station"].(*Model)
	if !ok || !bytes.Equal(mdl.Data, []byte("model-bytes")) {
		t.Fatalf("station = %T %v", handles["station"], handles["station"])
	}
}
