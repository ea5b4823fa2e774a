package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes how a service instance announces itself to Consul.
type Registration struct {
	ServiceID      string
	ServiceName    string
	Host           string
	HTTPAddr       string
	GRPCHealthAddr string
	Tags           []string
}

// AgentServiceRegistration converts r into the Consul agent payload. The check
// uses the gRPC health service when one is exposed, otherwise GET /health.
func (r Registration) AgentServiceRegistration() (*api.AgentServiceRegistration, error) {
	port, err := portOf(r.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid http address %q: %w", r.HTTPAddr, err)
	}

	check := &api.AgentServiceCheck{
		Interval:                       "10s",
		Timeout:                        "3s",
		DeregisterCriticalServiceAfter: "1m",
	}

	if r.GRPCHealthAddr != "" {
		grpcPort, err := portOf(r.GRPCHealthAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid grpc health address %q: %w", r.GRPCHealthAddr, err)
		}
		check.GRPC = net.JoinHostPort(r.Host, strconv.Itoa(grpcPort))
	} else {
		check.HTTP = fmt.Sprintf("http://%s/health", net.JoinHostPort(r.Host, strconv.Itoa(port)))
	}

	return &api.AgentServiceRegistration{
		ID:      r.ServiceID,
		Name:    r.ServiceName,
		Address: r.Host,
		Port:    port,
		Tags:    r.Tags,
		Check:   check,
	}, nil
}

// Registrar registers service instances with a Consul agent.
type Registrar struct {
	client *api.Client
	logger *zerolog.Logger
}

// NewRegistrar creates a Registrar talking to the agent at addr.
func NewRegistrar(logger *zerolog.Logger, addr string) (*Registrar, error) {
	cfg := api.DefaultConfig()
	cfg.Address = addr

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Registrar{client: client, logger: logger}, nil
}

// Register announces the instance and returns a function that withdraws it.
func (r *Registrar) Register(reg Registration) (func(), error) {
	payload, err := reg.AgentServiceRegistration()
	if err != nil {
		return nil, err
	}

	if err := r.client.Agent().ServiceRegister(payload); err != nil {
		return nil, fmt.Errorf("failed to register service with consul: %w", err)
	}

	r.logger.Info().Str("service_id", reg.ServiceID).Msg("registered with consul")

	return func() {
		if err := r.client.Agent().ServiceDeregister(reg.ServiceID); err != nil {
			r.logger.Warn().Err(err).Str("service_id", reg.ServiceID).Msg("failed to deregister from consul")
		}
	}, nil
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(portStr)
}
