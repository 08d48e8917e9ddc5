// Package system answers the panel's host lookups and runs its
// maintenance tasks. It is Linux-only: readings come from sysfs and the
// statfs/sysinfo syscalls.
package system

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"knurl/internal/buildinfo"
)

const defaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// Ops implements the panel's system operations. The exec and sleep hooks
// are swapped out in tests.
type Ops struct {
	log         *slog.Logger
	grace       time.Duration
	thermalZone string
	run         func(name string, args ...string) ([]byte, error)
	sleep       func(time.Duration)
}

func New(log *slog.Logger) *Ops {
	return &Ops{
		log:         log,
		grace:       3 * time.Second,
		thermalZone: defaultThermalZone,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
		sleep: time.Sleep,
	}
}

// Info reports the hostname, kernel release and panel build.
func (o *Ops) Info() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("system: hostname: %w", err)
	}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("system: uname: %w", err)
	}
	return fmt.Sprintf("System Info\nHost: %s\nKernel: %s\nPanel: %s",
		host, cstr(uts.Release[:]), buildinfo.Short()), nil
}

// IP returns the host's first non-loopback IPv4 address.
func (o *Ops) IP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("system: interface addrs: %w", err)
	}
	ip := firstIPv4(addrs)
	if ip == "" {
		ip = "none"
	}
	return "IP Address:\n" + ip, nil
}

// CPUTemp reads the SoC temperature from the thermal zone.
func (o *Ops) CPUTemp() (string, error) {
	raw, err := os.ReadFile(o.thermalZone)
	if err != nil {
		return "", fmt.Errorf("system: read thermal zone: %w", err)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return "", fmt.Errorf("system: parse thermal zone: %w", err)
	}
	return fmt.Sprintf("CPU Temp:\n%.1f C", float64(milli)/1000), nil
}

// DiskUsage reports the root filesystem.
func (o *Ops) DiskUsage() (string, error) {
	var st unix.Statfs_t
	if err := unix.Statfs("/", &st); err != nil {
		return "", fmt.Errorf("system: statfs /: %w", err)
	}
	bsize := uint64(st.Bsize)
	used := (st.Blocks - st.Bfree) * bsize
	free := st.Bavail * bsize
	pct := 0.0
	if used+free > 0 {
		pct = float64(used) / float64(used+free) * 100
	}
	return fmt.Sprintf("Disk Usage /\nUsed: %s\nFree: %s\n%.0f%% full",
		fmtBytes(used), fmtBytes(free), pct), nil
}

// Memory reports RAM totals from sysinfo.
func (o *Ops) Memory() (string, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return "", fmt.Errorf("system: sysinfo: %w", err)
	}
	unitSize := uint64(si.Unit)
	if unitSize == 0 {
		unitSize = 1
	}
	total := uint64(si.Totalram) * unitSize
	free := uint64(si.Freeram) * unitSize
	return fmt.Sprintf("Memory\nTotal: %s\nFree: %s\nUsed: %s",
		fmtBytes(total), fmtBytes(free), fmtBytes(total-free)), nil
}

// AptUpdate refreshes the package lists. The panel's service user needs
// the matching sudoers entry.
func (o *Ops) AptUpdate() (string, error) {
	o.log.Info("apt-get update started")
	out, err := o.run("sudo", "apt-get", "update")
	if err != nil {
		return "", fmt.Errorf("system: apt-get update: %v: %s", err, firstLine(out))
	}
	return "Update complete!", nil
}

// Reboot waits out the grace period so the result page can be shown, then
// reboots the host.
func (o *Ops) Reboot() (string, error) {
	o.log.Info("reboot requested")
	o.sleep(o.grace)
	if out, err := o.run("sudo", "reboot"); err != nil {
		return "", fmt.Errorf("system: reboot: %v: %s", err, firstLine(out))
	}
	return "Rebooting...", nil
}

// Shutdown waits out the grace period, then powers the host off.
func (o *Ops) Shutdown() (string, error) {
	o.log.Info("shutdown requested")
	o.sleep(o.grace)
	if out, err := o.run("sudo", "shutdown", "-h", "now"); err != nil {
		return "", fmt.Errorf("system: shutdown: %v: %s", err, firstLine(out))
	}
	return "Shutting down...", nil
}

func firstIPv4(addrs []net.Addr) string {
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipn.IP
		if ip.IsLoopback() || ip.To4() == nil {
			continue
		}
		return ip.String()
	}
	return ""
}

// cstr cuts a NUL-terminated byte array down to its string.
func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func fmtBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
