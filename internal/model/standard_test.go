package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseStandard(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    Standard
		wantErr bool
	}{
		{input: "soc2", want: StandardSOC2},
		{input: "PCI_DSS", want: StandardPCIDSS},
		{input: " gdpr ", want: StandardGDPR},
		{input: "HIPAA Security Rule", want: StandardHIPAA},
		{input: "iso-9001", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStandard(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseStandard(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseStandard(%q) = %q, expected %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseStandardsStopsOnError(t *testing.T) {
	t.Parallel()

	if _, err := ParseStandards([]string{"soc2", "nope"}); err == nil {
		t.Error("expected error for unknown standard")
	}
	got, err := ParseStandards([]string{"soc2", "hipaa"})
	if err != nil {
		t.Fatalf("ParseStandards() error = %v", err)
	}
	if JoinStandards(got) != "SOC2 Type II (2024), HIPAA Security Rule" {
		t.Errorf("JoinStandards() = %q", JoinStandards(got))
	}
}

func TestRegionStandards(t *testing.T) {
	t.Parallel()

	if got := len(RegionStandards(RegionAll)); got != len(standardKeys) {
		t.Errorf("RegionStandards(All) has %d entries, expected %d", got, len(standardKeys))
	}

	us := RegionStandards(RegionUS)
	us[0] = StandardCustom
	if RegionStandards(RegionUS)[0] == StandardCustom {
		t.Error("RegionStandards returned shared slice")
	}

	if !RegionAllows(RegionEU, []Standard{StandardGDPR}) {
		t.Error("EU should allow GDPR")
	}
	if RegionAllows(RegionEU, []Standard{StandardHIPAA}) {
		t.Error("EU should not allow HIPAA")
	}
	if !RegionAllows(RegionAll, []Standard{StandardHIPAA, StandardGDPR}) {
		t.Error("All should allow everything")
	}
}

func TestParsePersona(t *testing.T) {
	t.Parallel()

	p, err := ParsePersona("CISO")
	if err != nil {
		t.Fatalf("ParsePersona() error = %v", err)
	}
	if p != PersonaCISO || p.Short() != "CISO" {
		t.Errorf("ParsePersona() = %q (short %q)", p, p.Short())
	}
	if _, err := ParsePersona("manager"); err == nil {
		t.Error("expected error for unknown persona")
	}
	if _, err := ParseRegion("mars"); err == nil {
		t.Error("expected error for unknown region")
	}
}

func TestLoadAttachment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tfPath := filepath.Join(dir, "main.tf")
	if err := os.WriteFile(tfPath, []byte(`resource "aws_s3_bucket" "b" {}`), 0o600); err != nil {
		t.Fatal(err)
	}
	pngPath := filepath.Join(dir, "diagram.png")
	if err := os.WriteFile(pngPath, []byte("\x89PNG\r\n\x1a\n0000"), 0o600); err != nil {
		t.Fatal(err)
	}

	tf, err := LoadAttachment(tfPath)
	if err != nil {
		t.Fatalf("LoadAttachment() error = %v", err)
	}
	if !tf.IsText() || tf.Text == "" || tf.Name != "main.tf" {
		t.Errorf("text attachment = %+v", tf)
	}

	png, err := LoadAttachment(pngPath)
	if err != nil {
		t.Fatalf("LoadAttachment() error = %v", err)
	}
	if png.IsText() || png.MIMEType != "image/png" {
		t.Errorf("binary attachment: IsText=%v MIMEType=%q", png.IsText(), png.MIMEType)
	}

	if _, err := LoadAttachment(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	names := AttachmentNames([]Attachment{tf, png})
	if len(names) != 2 || names[0] != "main.tf" || names[1] != "diagram.png" {
		t.Errorf("AttachmentNames() = %v", names)
	}
}

func TestIsTextAttachment(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.tf", "B.HCL", "c.yaml", "d.yml", "e.json", "f.txt", "g.md", "h.sh", "i.py"} {
		if !IsTextAttachment(name) {
			t.Errorf("IsTextAttachment(%q) = false", name)
		}
	}
	for _, name := range []string{"a.png", "b.pdf", "noext"} {
		if IsTextAttachment(name) {
			t.Errorf("IsTextAttachment(%q) = true", name)
		}
	}
}
