package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"aedash/internal/apperr"
)

func TestFileFetchersReplayPayloads(t *testing.T) {
	dir := t.TempDir()
	spotPath := filepath.Join(dir, "spot.json")
	aePath := filepath.Join(dir, "ae.csv")
	spotJSON := `{"object":"list","data":[{"start_timestamp":1704067200000,"end_timestamp":1704070800000,"marketprice":80.5,"unit":"Eur/MWh"}]}`
	if err := os.WriteFile(spotPath, []byte(spotJSON), 0o600); err != nil {
		t.Fatalf("写入 spot 文件失败: %v", err)
	}
	if err := os.WriteFile(aePath, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("写入 AE 文件失败: %v", err)
	}

	spot, err := (&SpotFile{Path: spotPath}).FetchSpot(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("读取 spot 文件不应报错: %v", err)
	}
	if len(spot) != 1 || spot[0].StartMillis != 1704067200000 || spot[0].MarketPrice.String() != "80.5" {
		t.Fatalf("spot 解析错误: %#v", spot)
	}

	rows, err := (&ActivationFile{Path: aePath}).FetchActivation(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("读取 AE 文件不应报错: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("期望 4 行, 实际 %d", len(rows))
	}
}

func TestSpotFileWithoutData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spot.json")
	if err := os.WriteFile(path, []byte(`{"object":"list"}`), 0o600); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
	if _, err := (&SpotFile{Path: path}).FetchSpot(context.Background(), testWindow()); !apperr.Is(err, apperr.Upstream) {
		t.Fatalf("缺少 data 应为 upstream 错误, 实际 %v", err)
	}
	if _, err := (&SpotFile{Path: filepath.Join(t.TempDir(), "missing.json")}).FetchSpot(context.Background(), testWindow()); err == nil {
		t.Fatal("文件不存在应报错")
	}
}
