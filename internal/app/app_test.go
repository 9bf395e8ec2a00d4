package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"aedash/internal/apperr"
	"aedash/internal/config"
)

const spotPayload = `{"object":"list","data":[
{"start_timestamp":1704067200000,"end_timestamp":1704070800000,"marketprice":80.5,"unit":"Eur/MWh"},
{"start_timestamp":1704070800000,"end_timestamp":1704074400000,"marketprice":75.25,"unit":"Eur/MWh"}]}`

const activationPayload = "Zeit von;Zeit bis;AE Erstveröffentlichung;AE Vorläufig;AE Final\n" +
	"01.01.2024 00:00:00;01.01.2024 00:15:00;1,0;;12,5\n" +
	"01.01.2024 00:15:00;01.01.2024 00:30:00;;5,5;\n" +
	"01.01.2024 00:30:00;01.01.2024 00:45:00;5.5;;\n" +
	"01.01.2024 00:45:00;01.01.2024 01:00:00;;;\n" +
	"01.01.2024 01:00:00;01.01.2024 01:15:00;-2,0;;\n"

func newTestApp(t *testing.T) (*App, Sources) {
	t.Helper()
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	dir := t.TempDir()
	src := Sources{
		SpotFile:       filepath.Join(dir, "spot.json"),
		ActivationFile: filepath.Join(dir, "ae.csv"),
	}
	require.NoError(t, os.WriteFile(src.SpotFile, []byte(spotPayload), 0o600))
	require.NoError(t, os.WriteFile(src.ActivationFile, []byte(activationPayload), 0o600))
	return NewApp(cfg, zerolog.Nop()), src
}

func TestRenderWritesOutputs(t *testing.T) {
	a, src := newTestApp(t)
	out := t.TempDir()

	opts := RenderOptions{
		Date:     "2024-01-01",
		Days:     1,
		Clamp:    true,
		PNGPath:  filepath.Join(out, "chart.png"),
		CSVPath:  filepath.Join(out, "tables", "ae.csv"),
		XLSXPath: filepath.Join(out, "ae.xlsx"),
		Sources:  src,
	}
	require.NoError(t, a.Render(context.Background(), opts))

	png, err := os.ReadFile(opts.PNGPath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	csvData, err := os.ReadFile(opts.CSVPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 6)
	require.True(t, strings.HasPrefix(lines[1], "2024-01-01T00:00:00Z,2024-01-01T00:15:00Z,12.50,final,12.50,80.50,"))

	info, err := os.Stat(opts.XLSXPath)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestRenderRequiresOutput(t *testing.T) {
	a, src := newTestApp(t)
	require.Error(t, a.Render(context.Background(), RenderOptions{Date: "2024-01-01", Sources: src}))
}

func TestRenderRejectsInvalidDays(t *testing.T) {
	a, src := newTestApp(t)
	err := a.Render(context.Background(), RenderOptions{
		Date:    "2024-01-01",
		Days:    46,
		CSVPath: filepath.Join(t.TempDir(), "ae.csv"),
		Sources: src,
	})
	require.True(t, apperr.Is(err, apperr.InvalidInput))
}

func TestShowPrintsBoundsAndTable(t *testing.T) {
	a, src := newTestApp(t)
	var buf bytes.Buffer

	require.NoError(t, a.Show(context.Background(), ShowOptions{Date: "2024-01-01", Days: 1, Limit: 3, Sources: src, Out: &buf}))

	out := buf.String()
	require.Contains(t, out, "Start: 2024-01-01T000000 (1704067200000 ms)")
	require.Contains(t, out, "End:   2024-01-02T000000 (1704153600000 ms)")
	require.Contains(t, out, "valued 3, missing 1, malformed 1")
	require.Contains(t, out, "final=1 provisional=1 early_publication=1")
	// Limit keeps the last three intervals.
	require.NotContains(t, out, "2024-01-01T00:15:00Z")
	require.Contains(t, out, "malformed_value")
	require.Contains(t, out, "2024-01-01T01:00:00Z")
}

func TestArchiveWritesPerDay(t *testing.T) {
	a, src := newTestApp(t)
	dir := t.TempDir()

	require.NoError(t, a.Archive(context.Background(), ArchiveOptions{
		From:    "2024-01-01",
		To:      "2024-01-03",
		Dir:     dir,
		Workers: 2,
		Sources: src,
	}))

	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		for _, ext := range []string{".png", ".csv"} {
			_, err := os.Stat(filepath.Join(dir, "ae_spot_"+date+ext))
			require.NoError(t, err, date+ext)
		}
	}
}

func TestArchiveDates(t *testing.T) {
	dates, err := archiveDates("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	require.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, dates)

	_, err = archiveDates("2024-03-02", "2024-03-01")
	require.Error(t, err)
	_, err = archiveDates("2024-01-01", "2026-01-01")
	require.Error(t, err)
	_, err = archiveDates("", "2024-01-01")
	require.Error(t, err)
}

// chdir switches the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
