// Package directory checks building ids against the external building directory.
package directory

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Directory interface {
	BuildingExists(ctx context.Context, buildingID string) (bool, error)
}

// Open accepts every building id. Used when no directory address is configured.
type Open struct{}

func (Open) BuildingExists(context.Context, string) (bool, error) { return true, nil }

const GetBuildingMethod = "/directory.v1.DirectoryService/GetBuilding"

type GetBuildingRequest struct {
	BuildingID string `json:"building_id"`
}

type GetBuildingResponse struct {
	BuildingID string `json:"building_id"`
	Name       string `json:"name,omitempty"`
	Active     bool   `json:"active"`
}

// Client calls the directory over gRPC with the JSON codec.
type Client struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

func NewClient(conn grpc.ClientConnInterface, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{conn: conn, timeout: timeout}
}

// BuildingExists is false for unknown and for deactivated buildings.
func (c *Client) BuildingExists(ctx context.Context, buildingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp GetBuildingResponse
	err := c.conn.Invoke(ctx, GetBuildingMethod, &GetBuildingRequest{BuildingID: buildingID}, &resp)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("directory lookup %s: %w", buildingID, err)
	}
	return resp.Active, nil
}
