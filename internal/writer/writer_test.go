package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/errors"
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
	"github.com/maksimkurb/hostsfilter/internal/merge"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ConfigVersion: 1,
		General: &config.GeneralConfig{
			HostsPath: filepath.Join(dir, "hosts"),
			CacheDir:  dir,
		},
	}
}

func testResult() *merge.Result {
	return &merge.Result{
		Entries: []hostsfile.Entry{
			{IP: "127.0.0.1", Hostnames: []string{"localhost"}, Source: hostsfile.SourceUser},
			{IP: "0.0.0.0", Hostnames: []string{"ads.example.com"}, Source: "test_list"},
		},
		EntryCount:       2,
		PreservedCount:   1,
		BlockedHostnames: 1,
	}
}

func TestApply_WritesTargetBackupAndManifest(t *testing.T) {
	cfg := testConfig(t)
	previous := "127.0.0.1 localhost\n192.168.1.10 nas.local\n"
	if err := os.WriteFile(cfg.General.HostsPath, []byte(previous), 0644); err != nil {
		t.Fatalf("Failed to seed target: %v", err)
	}

	applied, err := Apply(testResult(), cfg)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied.WrittenCount != 2 {
		t.Errorf("Expected 2 written entries, got %d", applied.WrittenCount)
	}
	if applied.BackupPath != cfg.GetBackupPath() {
		t.Errorf("Unexpected backup path: %s", applied.BackupPath)
	}

	// The backup must be a byte-for-byte copy of the pre-apply target.
	backup, err := os.ReadFile(cfg.GetBackupPath())
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	if string(backup) != previous {
		t.Errorf("Backup differs from pre-apply target:\n%s", backup)
	}

	target, err := os.ReadFile(cfg.General.HostsPath)
	if err != nil {
		t.Fatalf("Failed to read target: %v", err)
	}
	if !strings.Contains(string(target), "ads.example.com") {
		t.Errorf("Target missing blocked hostname:\n%s", target)
	}

	manifest, err := merge.LoadManifest(cfg.GetManifestPath())
	if err != nil {
		t.Fatalf("Failed to load manifest: %v", err)
	}
	if _, ok := manifest[hostsfile.Pair{IP: "0.0.0.0", Hostname: "ads.example.com"}]; !ok {
		t.Errorf("Managed pair missing from manifest: %v", manifest)
	}
	if _, ok := manifest[hostsfile.Pair{IP: "127.0.0.1", Hostname: "localhost"}]; ok {
		t.Errorf("User pair must not be recorded in the manifest")
	}
}

func TestApply_MissingTargetSkipsBackup(t *testing.T) {
	cfg := testConfig(t)

	applied, err := Apply(testResult(), cfg)
	if err != nil {
		t.Fatalf("Apply on a fresh system failed: %v", err)
	}
	if applied.BackupPath != "" {
		t.Errorf("Expected no backup for a missing target, got %s", applied.BackupPath)
	}
	if _, err := os.Stat(cfg.GetBackupPath()); !os.IsNotExist(err) {
		t.Errorf("No backup file must be created when the target is missing")
	}
	if _, err := os.Stat(cfg.General.HostsPath); err != nil {
		t.Errorf("Target must still be written: %v", err)
	}
}

func TestApply_BackupFailureAborts(t *testing.T) {
	cfg := testConfig(t)
	previous := "127.0.0.1 localhost\n"
	if err := os.WriteFile(cfg.General.HostsPath, []byte(previous), 0644); err != nil {
		t.Fatalf("Failed to seed target: %v", err)
	}
	// Point the backup into a directory that does not exist.
	cfg.General.BackupPath = filepath.Join(t.TempDir(), "missing", "hosts.bak")

	_, err := Apply(testResult(), cfg)
	if err == nil {
		t.Fatalf("Expected apply to fail when the backup cannot be created")
	}
	if errors.CodeOf(err) != errors.ErrCodeBackup {
		t.Errorf("Expected a backup error, got %v", err)
	}

	// The target must be untouched after an aborted apply.
	target, _ := os.ReadFile(cfg.General.HostsPath)
	if string(target) != previous {
		t.Errorf("Target was modified despite backup failure:\n%s", target)
	}
}

func TestApply_WriteFailureLeavesTargetIntact(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	targetDir := filepath.Join(t.TempDir(), "etc")
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		t.Fatalf("Failed to create target dir: %v", err)
	}
	cfg := &config.Config{
		ConfigVersion: 1,
		General: &config.GeneralConfig{
			HostsPath:  filepath.Join(targetDir, "hosts"),
			BackupPath: filepath.Join(t.TempDir(), "hosts.bak"),
			CacheDir:   t.TempDir(),
		},
	}
	previous := "127.0.0.1 localhost\n192.168.1.10 nas.local\n"
	if err := os.WriteFile(cfg.General.HostsPath, []byte(previous), 0644); err != nil {
		t.Fatalf("Failed to seed target: %v", err)
	}

	// The backup lands elsewhere, so the failure hits the replace step.
	if err := os.Chmod(targetDir, 0555); err != nil {
		t.Fatalf("Failed to chmod target dir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(targetDir, 0755) })

	_, err := Apply(testResult(), cfg)
	if err == nil {
		t.Fatalf("Expected apply to fail when the target cannot be replaced")
	}
	if errors.CodeOf(err) != errors.ErrCodePermission {
		t.Errorf("Expected a permission error, got %v", err)
	}

	target, readErr := os.ReadFile(cfg.General.HostsPath)
	if readErr != nil {
		t.Fatalf("Failed to read target: %v", readErr)
	}
	if string(target) != previous {
		t.Errorf("Target must stay fully old after a failed write:\n%s", target)
	}

	backup, readErr := os.ReadFile(cfg.GetBackupPath())
	if readErr != nil {
		t.Fatalf("Backup must exist, it was taken before the write: %v", readErr)
	}
	if string(backup) != previous {
		t.Errorf("Backup differs from the pre-apply target:\n%s", backup)
	}
}

func TestWriteAtomic_CreateFailure(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "hosts")

	err := writeAtomic(target, []byte("content"))
	if err == nil {
		t.Fatalf("Expected writeAtomic to fail for a missing directory")
	}
	if errors.CodeOf(err) != errors.ErrCodeWrite {
		t.Errorf("Expected a write error, got %v", err)
	}
}

func TestApply_SecondApplyIsStable(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.General.HostsPath, []byte("127.0.0.1 localhost\n"), 0644); err != nil {
		t.Fatalf("Failed to seed target: %v", err)
	}
	result := testResult()

	if _, err := Apply(result, cfg); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	first, _ := os.ReadFile(cfg.General.HostsPath)

	if _, err := Apply(result, cfg); err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	second, _ := os.ReadFile(cfg.General.HostsPath)

	if string(first) != string(second) {
		t.Errorf("Applying the same result twice produced different content")
	}
}

func TestRender_Deterministic(t *testing.T) {
	result := testResult()
	if string(Render(result)) != string(Render(result)) {
		t.Errorf("Render is not byte-stable for the same result")
	}
}

func TestRender_Sections(t *testing.T) {
	content := string(Render(testResult()))

	preservedIdx := strings.Index(content, "SYSTEM ENTRIES - PRESERVED")
	managedIdx := strings.Index(content, "BLOCKLIST ENTRIES - GENERATED")
	if preservedIdx < 0 || managedIdx < 0 {
		t.Fatalf("Missing section banners:\n%s", content)
	}
	if preservedIdx > managedIdx {
		t.Errorf("Preserved section must come before the managed section")
	}
	if !strings.Contains(content, "# Source: test_list") {
		t.Errorf("Missing per-source marker:\n%s", content)
	}
	if strings.Index(content, "localhost") > managedIdx {
		t.Errorf("User entry placed in the managed section:\n%s", content)
	}
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if err := CheckWritable(path); err != nil {
		t.Errorf("Expected writable file, got %v", err)
	}

	// Missing file in a writable directory is fine: the apply creates it.
	if err := CheckWritable(filepath.Join(dir, "new-hosts")); err != nil {
		t.Errorf("Expected writable directory to pass, got %v", err)
	}
}
