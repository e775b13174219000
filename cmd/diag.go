package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/ncw/directio"
	"github.com/spf13/cobra"

	"github.com/judgecore/judgecore/internal/rlimit"
)

// DiagnosticResult contains results from RunDiag, including whether the
// probed memory allocation and disk write fit inside the --memory-soft-kb
// and --fsize-soft-kb limits a judge host would actually run submissions
// under, so a bad host config surfaces before it ever reaches a contestant.
type DiagnosticResult struct {
	PID               int     `json:"pid"`
	PPID              int     `json:"ppid"`
	NetInterfaceAvail bool    `json:"net_interface_avail"`
	Dir               string  `json:"dir"`
	CPUTaskNanos      int64   `json:"cpu_task_nanos"`
	DiskBPS           float64 `json:"disk_bps,omitempty"`

	// MemoryFitsLimit is nil when allocMem or the address-space limit was
	// not given, true when allocMem bytes would fit under the configured
	// soft limit.
	MemoryFitsLimit *bool `json:"memory_fits_limit,omitempty"`
	// FileSizeFitsLimit is nil when the disk write was skipped or the file
	// size limit was not given, true when the probe write would fit under
	// the configured soft limit.
	FileSizeFitsLimit *bool `json:"file_size_fits_limit,omitempty"`
}

const diagWriteBytes = 5 * 1024 * 1024

func diagCmd() *cobra.Command {
	var allocMem int
	var writeDisk bool
	var limits limitFlags
	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Probe a prospective judge host's memory headroom and disk write throughput against its configured limits",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			if d, err := RunDiag(allocMem, writeDisk, limits.toConfig()); err != nil {
				log.Fatal(err)
			} else if b, err := json.MarshalIndent(d, "", "  "); err != nil {
				log.Fatal(err)
			} else {
				fmt.Println(string(b))
			}
		},
	}
	cmd.Flags().IntVar(&allocMem, "alloc-mem", 0, "Amount of bytes to attempt to allocate, checked against --memory-soft-kb")
	cmd.Flags().BoolVar(&writeDisk, "write-disk", false, "Measure O_DIRECT disk write throughput, checked against --fsize-soft-kb")
	cmd.Flags().Uint64Var(&limits.addressSpaceSoft, "memory-soft-kb", 0, "Address space soft limit to check --alloc-mem against, in KB (0 skips the check)")
	cmd.Flags().Uint64Var(&limits.fileSizeSoft, "fsize-soft-kb", 0, "File size soft limit to check the disk write against, in KB (0 skips the check)")
	return cmd
}

// RunDiag runs diagnostic tests and returns diagnostic info. When limits
// carries an AddressSpace or FileSize axis, the corresponding probe's byte
// count is compared against that axis's soft limit so a misconfigured host
// is caught before it is handed live submissions.
func RunDiag(allocMem int, writeDisk bool, limits rlimit.Config) (*DiagnosticResult, error) {
	// Get common info
	res := &DiagnosticResult{
		PID:  os.Getpid(),
		PPID: os.Getppid(),
	}
	// See if there are any avail interfaces
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed getting interfaces: %w", err)
	}
	for _, iface := range ifaces {
		// Flag not 0 (tunl/sit) or local only (so not up, broadcast, etc), then
		// it's "available" by our definition
		if iface.Flags != 0 && iface.Flags != net.FlagLoopback {
			res.NetInterfaceAvail = true
			break
		}
	}
	// Cwd
	if res.Dir, err = os.Getwd(); err != nil {
		return nil, fmt.Errorf("failed getting current working dir: %w", err)
	}
	// If alloc requested, attempt via byte slice, then check it against the
	// configured address-space soft limit: a probe allocation that wouldn't
	// even fit under the limit a contestant runs with means the host's
	// memory-soft-kb is set too low for submissions of this size.
	if allocMem > 0 {
		var buf bytes.Buffer
		buf.Write(make([]byte, allocMem))
		if limits.AddressSpace != nil {
			fits := uint64(allocMem) <= limits.AddressSpace.Soft
			res.MemoryFitsLimit = &fits
		}
	}
	// Simulate some CPU
	runtime.GOMAXPROCS(1)
	start := time.Now()
	for i := uint64(0); i < 500000000; i++ {
	}
	res.CPUTaskNanos = time.Since(start).Nanoseconds()
	// Write to disk via direct IO and check the write against the
	// configured file-size soft limit: a checker or interactor is spawned
	// under this same limit (see internal/judge), so a limit too small for
	// this probe write is too small for their diagnostics output too.
	if writeDisk {
		f, err := directio.OpenFile("temp-file", os.O_WRONLY|os.O_CREATE|os.O_SYNC, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed opening temp file: %w", err)
		}
		defer os.Remove(f.Name())
		defer f.Close()
		block := directio.AlignedBlock(directio.BlockSize)
		start = time.Now()
		for i := 0; i < diagWriteBytes; i += len(block) {
			if _, err := f.Write(block); err != nil {
				return nil, fmt.Errorf("failed writing temp file: %w", err)
			}
		}
		timeTaken := time.Since(start)
		res.DiskBPS = diagWriteBytes / timeTaken.Seconds()
		if limits.FileSize != nil {
			fits := uint64(diagWriteBytes) <= limits.FileSize.Soft
			res.FileSizeFitsLimit = &fits
		}
	}
	return res, nil
}
