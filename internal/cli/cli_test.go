package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionSkipsConfig(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version", "--config", "/does/not/exist.yaml"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version 不应加载配置: %v", err)
	}
	if !strings.Contains(buf.String(), "version: ") {
		t.Fatalf("输出缺少版本信息: %q", buf.String())
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"render": false, "show": false, "serve": false, "watch": false, "archive": false, "version": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("子命令 %s 未注册", name)
		}
	}
}
