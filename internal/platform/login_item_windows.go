//go:build windows

package platform

import (
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

const runKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

// Enabled reports whether the Run registry value exists.
func (item *LoginItem) Enabled() bool {
	return exec.Command("reg", "query", runKey, "/v", item.name).Run() == nil
}

func (item *LoginItem) enable() error {
	value := `"` + strings.Trim(item.execPath, `"`) + `" --background`
	return runReg("add", runKey, "/v", item.name, "/t", "REG_SZ", "/d", value, "/f")
}

func (item *LoginItem) disable() error {
	if !item.Enabled() {
		return nil
	}
	return runReg("delete", runKey, "/v", item.name, "/f")
}

func runReg(args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "reg %s: %s", args[0], strings.TrimSpace(string(output)))
	}
	return nil
}
