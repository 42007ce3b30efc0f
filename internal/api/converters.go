package api

import (
	"sort"

	"github.com/angeloszaimis/healthwatch/internal/instance"
)

type InstanceResponse struct {
	ID           string            `json:"id"`
	URI          string            `json:"uri"`
	Endpoints    map[string]string `json:"endpoints"`
	HealthStatus string            `json:"health_status"`
}

type InstancesResponse struct {
	Instances []InstanceResponse `json:"instances"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func toInstanceResponse(inst *instance.Instance) InstanceResponse {
	return InstanceResponse{
		ID:           inst.ID(),
		URI:          inst.URI(),
		Endpoints:    inst.Endpoints(),
		HealthStatus: inst.HealthStatus().String(),
	}
}

// toInstancesResponse orders instances by id so responses are stable.
func toInstancesResponse(instances []*instance.Instance) InstancesResponse {
	res := InstancesResponse{
		Instances: make([]InstanceResponse, 0, len(instances)),
	}
	for _, inst := range instances {
		res.Instances = append(res.Instances, toInstanceResponse(inst))
	}
	sort.Slice(res.Instances, func(i, j int) bool {
		return res.Instances[i].ID < res.Instances[j].ID
	})

	return res
}
