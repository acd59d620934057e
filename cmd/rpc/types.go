package rpc

import (
	"github.com/canopy-network/committee/lib"
)

// =====================================================
// Query Request Types
// =====================================================

type addressRequest struct {
	Address lib.HexBytes `json:"address"`
}

type committeeRequest struct {
	Committee lib.HexBytes `json:"committee"`
}

type indexRequest struct {
	committeeRequest
	Index uint64 `json:"index"`
}

type latestEventsRequest struct {
	committeeRequest
	Limit uint64 `json:"limit"`
}

type approverRequest struct {
	committeeRequest
	addressRequest
}

type approvalRequest struct {
	indexRequest
	addressRequest
}

// =====================================================
// Response Types
// =====================================================

type approverResponse struct {
	IsApprover bool `json:"isApprover"`
}

type approvalResponse struct {
	Approved bool `json:"approved"`
}

type ProcessResourceUsage struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	CreateTime    string  `json:"createTime"`
	ThreadCount   uint64  `json:"threadCount"`
	MemoryPercent float64 `json:"usedMemoryPercent"`
	CPUPercent    float64 `json:"usedCPUPercent"`
}

type SystemResourceUsage struct {
	// ram
	TotalRAM       uint64  `json:"totalRAM"`
	AvailableRAM   uint64  `json:"availableRAM"`
	UsedRAM        uint64  `json:"usedRAM"`
	UsedRAMPercent float64 `json:"usedRAMPercent"`
	FreeRAM        uint64  `json:"freeRAM"`
	// CPU
	UsedCPUPercent float64 `json:"usedCPUPercent"`
	UserCPU        float64 `json:"userCPU"`
	SystemCPU      float64 `json:"systemCPU"`
	IdleCPU        float64 `json:"idleCPU"`
	// disk
	TotalDisk       uint64  `json:"totalDisk"`
	UsedDisk        uint64  `json:"usedDisk"`
	UsedDiskPercent float64 `json:"usedDiskPercent"`
	FreeDisk        uint64  `json:"freeDisk"`
}

type resourceUsageResponse struct {
	Process ProcessResourceUsage `json:"process"`
	System  SystemResourceUsage  `json:"system"`
}
