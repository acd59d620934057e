package rpc

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Config retrieves the node's configuration file
func (s *Server) Config(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, s.config, http.StatusOK)
}

// ResourceUsage retrieves node resource usage
func (s *Server) ResourceUsage(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	pm, err := mem.VirtualMemory() // os memory
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	c, err := cpu.Times(false) // os cpu
	if err != nil || len(c) == 0 {
		write(w, ErrResourceUsage(errOrEmpty(err, "cpu times")), http.StatusInternalServerError)
		return
	}
	cp, err := cpu.Percent(0, false) // os cpu percent
	if err != nil || len(cp) == 0 {
		write(w, ErrResourceUsage(errOrEmpty(err, "cpu percent")), http.StatusInternalServerError)
		return
	}
	d, err := disk.Usage(s.diskPath()) // disk holding the data directory
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	name, err := p.Name()
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	status, err := p.Status()
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	numThreads, err := p.NumThreads()
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	memPercent, err := p.MemoryPercent()
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	utc, err := p.CreateTime()
	if err != nil {
		write(w, ErrResourceUsage(err), http.StatusInternalServerError)
		return
	}
	var processStatus string
	if len(status) != 0 {
		processStatus = status[0]
	}
	write(w, resourceUsageResponse{
		Process: ProcessResourceUsage{
			Name:          name,
			Status:        processStatus,
			CreateTime:    time.UnixMilli(utc).Format(time.RFC822),
			ThreadCount:   uint64(numThreads),
			MemoryPercent: float64(memPercent),
			CPUPercent:    cpuPercent,
		},
		System: SystemResourceUsage{
			TotalRAM:        pm.Total,
			AvailableRAM:    pm.Available,
			UsedRAM:         pm.Used,
			UsedRAMPercent:  pm.UsedPercent,
			FreeRAM:         pm.Free,
			UsedCPUPercent:  cp[0],
			UserCPU:         c[0].User,
			SystemCPU:       c[0].System,
			IdleCPU:         c[0].Idle,
			TotalDisk:       d.Total,
			UsedDisk:        d.Used,
			UsedDiskPercent: d.UsedPercent,
			FreeDisk:        d.Free,
		},
	}, http.StatusOK)
}

// diskPath returns the data directory if it exists, the root otherwise
func (s *Server) diskPath() string {
	if _, err := os.Stat(s.config.DataDirPath); err == nil {
		return s.config.DataDirPath
	}
	return "/"
}

// errOrEmpty returns err, or an error naming the empty result
func errOrEmpty(err error, what string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s returned no results", what)
}
