package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aedash/internal/apperr"
)

const sampleCSV = "\ufeffZeit von [CET/CEST];Zeit bis [CET/CEST];AE Erstveröffentlichung [EUR/MWh];AE Vorläufig [EUR/MWh];AE Final [EUR/MWh]\n" +
	"01.01.2024 00:00:00;01.01.2024 00:15:00;;;12,5\n" +
	"01.01.2024 00:15:00;01.01.2024 00:30:00;;5,5;\n" +
	"01.01.2024 00:30:00;01.01.2024 00:45:00;-3,25;;\n" +
	"01.01.2024 00:45:00;01.01.2024 01:00:00;;;\n"

func TestActivationFetchSuccess(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	a := NewActivation(ActivationOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	rows, err := a.FetchActivation(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}

	if gotPath != "/AE/Download/German/PT15M/2024-01-01T000000/2024-01-02T000000" {
		t.Fatalf("下载路径不正确: %s", gotPath)
	}
	if gotQuery != "p_aeMode=Export&resolution=PT15M" {
		t.Fatalf("查询参数不正确: %s", gotQuery)
	}
	if len(rows) != 4 {
		t.Fatalf("期望 4 行, 实际 %d", len(rows))
	}
	if rows[0].IntervalStart != "01.01.2024 00:00:00" || rows[0].Final != "12,5" {
		t.Fatalf("第一行解析错误: %#v", rows[0])
	}
	if rows[1].Provisional != "5,5" || rows[1].Final != "" || rows[1].Early != "" {
		t.Fatalf("第二行解析错误: %#v", rows[1])
	}
	if rows[2].Early != "-3,25" {
		t.Fatalf("第三行解析错误: %#v", rows[2])
	}
}

func TestActivationWrongColumnCount(t *testing.T) {
	payload := "von;bis;erst;vorl;final\n01.01.2024 00:00:00;01.01.2024 00:15:00;1,0;2,0\n"
	_, err := ParseActivationCSV([]byte(payload))
	if !apperr.Is(err, apperr.Upstream) {
		t.Fatalf("列数错误应为 upstream 错误, 实际 %v", err)
	}
	if apperr.RowOf(err) != 0 {
		t.Fatalf("应指向第 0 行, 实际 %d", apperr.RowOf(err))
	}

	_, err = ParseActivationCSV([]byte("von;bis;wert\n"))
	if !apperr.Is(err, apperr.Upstream) {
		t.Fatalf("表头列数错误应为 upstream 错误, 实际 %v", err)
	}
}

func TestActivationEmptyPayload(t *testing.T) {
	if _, err := ParseActivationCSV(nil); !apperr.Is(err, apperr.Upstream) {
		t.Fatalf("空响应应为 upstream 错误, 实际 %v", err)
	}

	rows, err := ParseActivationCSV([]byte("von;bis;erst;vorl;final\n"))
	if err != nil {
		t.Fatalf("只有表头不应报错: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("期望 0 行, 实际 %d", len(rows))
	}
}

func TestActivationFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 10), http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewActivation(ActivationOptions{BaseURL: srv.URL}, noopLogger())
	if _, err := a.FetchActivation(context.Background(), testWindow()); !apperr.Is(err, apperr.Upstream) {
		t.Fatalf("HTTP 503 应为 upstream 错误, 实际 %v", err)
	}
}
