package services

import (
	"strings"
	"testing"
	"time"
)

func TestChatImportDateHeaders(t *testing.T) {
	input := strings.Join([]string{
		"orphan line before any date",
		"=== 2024-01-15 ===",
		"niners -3 $50",
		"hawks o120",
		"",
		"2024-01-16",
		"army ml",
	}, "\n")

	lines, err := NewChatImporter().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("read %d lines, want 3", len(lines))
	}

	day1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	if !lines[0].Date.Equal(day1) || lines[0].Text != "niners -3 $50" {
		t.Errorf("line 0 = %v %q", lines[0].Date, lines[0].Text)
	}
	if !lines[1].Date.Equal(day1) {
		t.Errorf("line 1 date = %v, want the header date carried forward", lines[1].Date)
	}
	if !lines[2].Date.Equal(day2) || lines[2].Text != "army ml" {
		t.Errorf("line 2 = %v %q", lines[2].Date, lines[2].Text)
	}
}

func TestChatImportTimestampedMessages(t *testing.T) {
	input := strings.Join([]string{
		"[1/15/24, 9:32 PM] Sam: niners -3",
		"[1/15/24, 9:33 PM] Sam: hawks o120",
		"untagged followup line",
		"[1/16/24, 11:02 AM] Sam: army ml",
	}, "\n")

	lines, err := NewChatImporter().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("read %d lines, want 4", len(lines))
	}

	if lines[0].Text != "niners -3" {
		t.Errorf("timestamp prefix not stripped: %q", lines[0].Text)
	}
	if lines[2].Text != "untagged followup line" {
		t.Errorf("untagged line = %q", lines[2].Text)
	}
	if !lines[2].Date.Equal(lines[1].Date) {
		t.Error("untagged line did not inherit the running date")
	}
	if !lines[3].Date.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("line 3 date = %v", lines[3].Date)
	}
}

func TestChatImportStripsHTML(t *testing.T) {
	input := strings.Join([]string{
		"2024-01-15",
		"<div class=\"msg\"><b>niners -3</b> &amp; hawks o120</div>",
	}, "\n")

	lines, err := NewChatImporter().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("read %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0].Text, "niners -3") || !strings.Contains(lines[0].Text, "& hawks o120") {
		t.Errorf("html not stripped: %q", lines[0].Text)
	}
	if strings.Contains(lines[0].Text, "<") || strings.Contains(lines[0].Text, "&amp;") {
		t.Errorf("markup survived: %q", lines[0].Text)
	}
}

func TestChatImportEmpty(t *testing.T) {
	lines, err := NewChatImporter().Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("read %d lines from empty input", len(lines))
	}
}
