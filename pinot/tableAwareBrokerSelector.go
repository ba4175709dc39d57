package pinot

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

const (
	offlineSuffix  = "_OFFLINE"
	realtimeSuffix = "_REALTIME"
)

// tableAwareBrokerSelector picks a broker serving the requested table from a mapping that is
// refreshed in the background by the embedding selector.
type tableAwareBrokerSelector struct {
	tableBrokerMap map[string]([]string)
	allBrokerList  []string
	rwMux          sync.RWMutex
}

func (s *tableAwareBrokerSelector) selectBroker(table string) (string, error) {
	tableName := extractTableName(table)
	var brokerList []string
	if tableName == "" {
		s.rwMux.RLock()
		brokerList = s.allBrokerList
		s.rwMux.RUnlock()
		if len(brokerList) == 0 {
			return "", fmt.Errorf("no available broker found")
		}
	} else {
		var found bool
		s.rwMux.RLock()
		brokerList, found = s.tableBrokerMap[tableName]
		s.rwMux.RUnlock()
		if !found {
			return "", fmt.Errorf("unable to find the table: %s", table)
		}
		if len(brokerList) == 0 {
			return "", fmt.Errorf("no available broker found for table: %s", table)
		}
	}
	// #nosec G404
	return brokerList[rand.Intn(len(brokerList))], nil
}

func (s *tableAwareBrokerSelector) update(tableBrokerMap map[string]([]string), allBrokerList []string) {
	s.rwMux.Lock()
	s.tableBrokerMap = tableBrokerMap
	s.allBrokerList = allBrokerList
	s.rwMux.Unlock()
}

func (s *tableAwareBrokerSelector) snapshot() (map[string]([]string), []string) {
	s.rwMux.RLock()
	defer s.rwMux.RUnlock()
	return s.tableBrokerMap, s.allBrokerList
}

// extractTableName strips a physical table type suffix.
func extractTableName(table string) string {
	if name, ok := strings.CutSuffix(table, offlineSuffix); ok {
		return name
	}
	return strings.TrimSuffix(table, realtimeSuffix)
}
