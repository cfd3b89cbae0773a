package browser

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/internal/config"
)

// launchBrowser starts an independent Chrome process with remote debugging
// enabled, opening startURL in a new window. The process is fully detached:
// it keeps running after this program exits, because the window belongs to
// the user, not to us.
func launchBrowser(cfg *config.BrowserConfig, startURL string, logger *zap.Logger) (int, error) {
	args := []string{
		"--user-data-dir=" + cfg.UserDataDir,
		"--profile-directory=" + cfg.ProfileDirectory,
		fmt.Sprintf("--remote-debugging-port=%d", cfg.CDPPort),
		"--no-default-browser-check",
		"--no-first-run",
		"--new-window",
	}

	if cfg.Proxy != nil {
		if err := cfg.Proxy.Validate(); err != nil {
			return 0, err
		}
		args = append(args, "--proxy-server="+cfg.Proxy.Server)
		if cfg.Proxy.Bypass != "" {
			args = append(args, "--proxy-bypass-list="+cfg.Proxy.Bypass)
		}
		if cfg.Proxy.IgnoreCertErrors {
			args = append(args, "--ignore-certificate-errors")
		}
	}

	args = append(args, startURL)

	cmd := exec.Command(cfg.ExecutablePath, args...)
	detachProcess(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launching browser %s: %w", cfg.ExecutablePath, err)
	}
	pid := cmd.Process.Pid

	// Release the handle so the child is not reaped with us.
	if err := cmd.Process.Release(); err != nil {
		logger.Warn("failed to release browser process handle", zap.Error(err))
	}

	logger.Debug("browser process started", zap.Int("pid", pid))
	return pid, nil
}
