package node

import (
	"sort"
	"sync"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/models"
)

type ServiceFactory func(*Chains, *sync.WaitGroup, models.ServiceHealth) app.Service

func GetServiceFactories() map[string]ServiceFactory {
	services := map[string]ServiceFactory{
		MainMintExecutorName: NewMainMintExecutor,
		SideMintExecutorName: NewSideMintExecutor,
		MessageRelayerName:   NewMessageRelayer,
		ReserveMonitorName:   NewReserveMonitor,
	}

	return services
}

// CreateService builds the named service, resuming from its last reported
// health when there is one.
func CreateService(
	chains *Chains,
	wg *sync.WaitGroup,
	serviceName string,
	serviceHealthMap map[string]models.ServiceHealth,
	factory ServiceFactory,
) app.Service {
	serviceHealth, ok := serviceHealthMap[serviceName]
	if !ok {
		serviceHealth = models.ServiceHealth{Name: serviceName}
	}
	return factory(chains, wg, serviceHealth)
}

// CreateServices builds every node service in a stable order.
func CreateServices(chains *Chains, wg *sync.WaitGroup, lastHealth models.Health) []app.Service {
	serviceHealthMap := make(map[string]models.ServiceHealth)
	for _, serviceHealth := range lastHealth.ServiceHealths {
		serviceHealthMap[serviceHealth.Name] = serviceHealth
	}

	factories := GetServiceFactories()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make([]app.Service, 0, len(names))
	for _, name := range names {
		services = append(services, CreateService(chains, wg, name, serviceHealthMap, factories[name]))
	}
	return services
}
