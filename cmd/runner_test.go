package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"playbridge/internal/models"
	"playbridge/internal/services"
	"playbridge/internal/shared"
	tu "playbridge/internal/testing"
)

func testRunner(t *testing.T, registry *services.Registry) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = "" // keep command tests off the filesystem

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Registry: registry,
		Logger:   shared.NewLogger(io.Discard),
		Output:   output,
	})
	return runner, output
}

func mockRegistry() *services.Registry {
	source := &tu.MockService{
		ServiceName: "MockSource",
		GetPlaylistsFn: func(ctx context.Context) ([]models.Playlist, error) {
			return []models.Playlist{
				{ID: "pl1", Name: "Road Trip", Description: "Driving songs", TrackCount: 2},
				{ID: "pl2", Name: "Focus", TrackCount: 10},
			}, nil
		},
		GetPlaylistDetailsFn: func(ctx context.Context, id string) (*models.Playlist, error) {
			return &models.Playlist{ID: id, Name: "Road Trip", TrackCount: 2}, nil
		},
		GetPlaylistTracksFn: func(ctx context.Context, id string) ([]models.Track, error) {
			return []models.Track{
				{ID: "s1", Title: "Song One", Artist: "Artist One", ISRC: "ISRC0001"},
				{ID: "s2", Title: "Song Two", Artist: "Artist Two", ISRC: "ISRC0002"},
			}, nil
		},
	}

	destination := &tu.MockISRCService{
		MockService: tu.MockService{
			ServiceName: "MockDest",
			CreatePlaylistFn: func(ctx context.Context, name, description string, trackIDs []string) (*models.Playlist, error) {
				return &models.Playlist{ID: "newpl", Name: name, TrackCount: len(trackIDs)}, nil
			},
		},
		SearchByISRCFn: func(ctx context.Context, isrc string) ([]models.Track, error) {
			return []models.Track{{ID: "d-" + isrc, Title: "t", Artist: "a", ISRC: isrc}}, nil
		},
	}

	registry := services.NewRegistry()
	registry.Register("mocksource", source)
	registry.Register("mockdest", destination)
	return registry
}

func TestNewRunner(t *testing.T) {
	t.Run("with all dependencies provided", func(t *testing.T) {
		config := shared.DefaultConfig()
		logger := shared.NewLogger(nil)
		output := &bytes.Buffer{}
		registry := services.NewRegistry()

		runner := NewRunner(RunnerOpts{
			Config:     config,
			ConfigPath: "/test/path/config.toml",
			Registry:   registry,
			Logger:     logger,
			Output:     output,
		})

		if runner.config != config {
			t.Error("expected config to be set")
		}
		if runner.configPath != "/test/path/config.toml" {
			t.Errorf("expected configPath to be set, got %s", runner.configPath)
		}
		if runner.registry != registry {
			t.Error("expected registry to be set")
		}
		if runner.logger != logger {
			t.Error("expected logger to be set")
		}
		if runner.output != output {
			t.Error("expected output to be set")
		}
	})

	t.Run("with nil dependencies uses defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected default config to be set")
		}
		if runner.configPath != "config.toml" {
			t.Errorf("expected default config path, got %s", runner.configPath)
		}
		if runner.registry == nil {
			t.Error("expected default registry to be set")
		}
		if runner.logger == nil {
			t.Error("expected default logger to be set")
		}
		if runner.output != os.Stdout {
			t.Error("expected output to default to os.Stdout")
		}
	})

	t.Run("register returns all top-level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "services", "playlists", "export", "sync", "jobs", "history", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: got %s, want %s", i, commands[i].Name, name)
			}
		}
	})
}

func TestWriteHelpers(t *testing.T) {
	t.Run("writeJSON", func(t *testing.T) {
		runner, output := testRunner(t, nil)

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if output.String() != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("writeJSON pretty", func(t *testing.T) {
		runner, output := testRunner(t, nil)

		if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), "  \"key\": \"value\"") {
			t.Errorf("expected indented output, got %q", output.String())
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		runner, output := testRunner(t, nil)

		if err := runner.writePlain("count: %d\n", 3); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		if output.String() != "count: 3\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func TestRunnerCommands(t *testing.T) {
	run := func(t *testing.T, runner *Runner, args ...string) error {
		t.Helper()
		app := &cli.Command{Name: "playbridge", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"playbridge"}, args...))
	}

	t.Run("services lists configured services", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())

		if err := run(t, runner, "services"); err != nil {
			t.Fatalf("services failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "MockSource (mocksource)") || !strings.Contains(got, "MockDest (mockdest)") {
			t.Errorf("expected both services listed, got:\n%s", got)
		}
	})

	t.Run("playlists lists source playlists", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())

		if err := run(t, runner, "playlists", "mocksource"); err != nil {
			t.Fatalf("playlists failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Found 2 playlists") || !strings.Contains(got, "Road Trip") {
			t.Errorf("unexpected output:\n%s", got)
		}
	})

	t.Run("playlists honors limit", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())

		if err := run(t, runner, "playlists", "mocksource", "--limit", "1"); err != nil {
			t.Fatalf("playlists failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Found 1 playlists") || strings.Contains(got, "Focus") {
			t.Errorf("expected limit to apply, got:\n%s", got)
		}
	})

	t.Run("playlists rejects unknown service", func(t *testing.T) {
		runner, _ := testRunner(t, mockRegistry())

		if err := run(t, runner, "playlists", "nope"); err == nil {
			t.Fatal("expected error for unknown service")
		}
	})

	t.Run("sync run syncs a playlist", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())

		err := run(t, runner, "sync", "run",
			"--source", "mocksource", "--destination", "mockdest", "--playlist", "pl1")
		if err != nil {
			t.Fatalf("sync run failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Sync Complete") {
			t.Errorf("expected completion banner, got:\n%s", got)
		}
		if !strings.Contains(got, "Matched: 2/2 tracks") {
			t.Errorf("expected match summary, got:\n%s", got)
		}
	})

	t.Run("sync run rejects same source and destination", func(t *testing.T) {
		runner, _ := testRunner(t, mockRegistry())

		err := run(t, runner, "sync", "run",
			"--source", "mocksource", "--destination", "mocksource", "--playlist", "pl1")
		if err == nil {
			t.Fatal("expected error for identical source and destination")
		}
	})

	t.Run("sync validate reports a valid pair", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())

		err := run(t, runner, "sync", "validate",
			"--source", "mocksource", "--destination", "mockdest", "--playlist", "pl1")
		if err != nil {
			t.Fatalf("sync validate failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Sync is possible") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("sync capabilities prints merged limits", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())

		err := run(t, runner, "sync", "capabilities",
			"--source", "mocksource", "--destination", "mockdest", "--json")
		if err != nil {
			t.Fatalf("sync capabilities failed: %v", err)
		}
		if !strings.Contains(output.String(), `"can_sync": true`) {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("jobs list prints configured jobs", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())
		runner.config.Jobs = []shared.JobConfig{
			{Name: "nightly", Source: "mocksource", Destination: "mockdest", PlaylistID: "pl1"},
		}

		if err := run(t, runner, "jobs", "list"); err != nil {
			t.Fatalf("jobs list failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "nightly") || !strings.Contains(got, "mocksource → mockdest") {
			t.Errorf("unexpected output:\n%s", got)
		}
	})

	t.Run("jobs run executes configured jobs", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())
		runner.config.Jobs = []shared.JobConfig{
			{Name: "nightly", Source: "mocksource", Destination: "mockdest", PlaylistID: "pl1"},
		}

		if err := run(t, runner, "jobs", "run"); err != nil {
			t.Fatalf("jobs run failed: %v", err)
		}
		if !strings.Contains(output.String(), "Job: nightly") {
			t.Errorf("expected job banner, got:\n%s", output.String())
		}
	})

	t.Run("export writes playlist files", func(t *testing.T) {
		runner, output := testRunner(t, mockRegistry())
		outDir := t.TempDir() + "/export"

		err := run(t, runner, "export", "mocksource", "--id", "pl1", "--format", "json", "--output", outDir)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		tu.AssertFileExists(t, outDir+"/pl1.json")
		if !strings.Contains(output.String(), "Exported: 1/1 playlists") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("history requires a configured database", func(t *testing.T) {
		runner, _ := testRunner(t, mockRegistry())
		runner.config.Database.Path = ""

		if err := run(t, runner, "history"); err == nil {
			t.Fatal("expected error when database.path is not configured")
		}
	})
}
