package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthProber checks server reachability with the standard gRPC health
// service.
type HealthProber struct {
	endpointAddr string
	conn         *grpc.ClientConn
	client       healthpb.HealthClient
}

func NewHealthProber(endpointAddr string, opts ...grpc.DialOption) (*HealthProber, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(endpointAddr, opts...)
	if err != nil {
		return nil, fmt.Errorf("health client for %s: %w", endpointAddr, err)
	}
	return &HealthProber{endpointAddr: endpointAddr, conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Ping returns nil when the server reports SERVING.
func (p *HealthProber) Ping(ctx context.Context) error {
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: health status %s", common.ErrUnavailable, resp.GetStatus())
	}
	return nil
}

func (p *HealthProber) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return common.ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
