package hashing

import (
	"io"
	"strings"
	"testing"
)

func TestMD5ReaderProxy(t *testing.T) {
	proxy := NewMD5ReaderProxy(strings.NewReader("hello world"))

	content, err := io.ReadAll(proxy)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(content) != "hello world" {
		t.Errorf("Proxy altered the content: %q", content)
	}

	checksum, err := proxy.GetChecksum()
	if err != nil {
		t.Fatalf("GetChecksum failed: %v", err)
	}
	if checksum != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("Unexpected checksum: %s", checksum)
	}
}

func TestMD5ReaderProxy_SameContentSameChecksum(t *testing.T) {
	first := NewMD5ReaderProxy(strings.NewReader("0.0.0.0 ads.example.com\n"))
	second := NewMD5ReaderProxy(strings.NewReader("0.0.0.0 ads.example.com\n"))
	_, _ = io.ReadAll(first)
	_, _ = io.ReadAll(second)

	a, _ := first.GetChecksum()
	b, _ := second.GetChecksum()
	if a != b {
		t.Errorf("Same content produced different checksums: %s vs %s", a, b)
	}
}
