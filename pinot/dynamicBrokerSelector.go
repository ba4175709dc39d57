package pinot

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	zk "github.com/go-zookeeper/zk"
	log "github.com/sirupsen/logrus"
)

const (
	brokerExternalViewPath     = "EXTERNALVIEW/brokerResource"
	defaultZkSessionTimeoutSec = 60
	watchRetryInterval         = time.Second
)

// ReadZNode reads the data of a ZooKeeper node.
type ReadZNode func(path string) ([]byte, error)

// WatchZNode sets a one-shot data watch on a ZooKeeper node.
type WatchZNode func(path string) (<-chan zk.Event, error)

// dynamicBrokerSelector follows the broker resource external view in ZooKeeper and keeps the
// table to broker mapping current.
type dynamicBrokerSelector struct {
	zkConfig           *ZookeeperConfig
	zkConn             *zk.Conn
	readZNode          ReadZNode
	watchZNode         WatchZNode
	externalViewZkPath string
	done               chan struct{}
	closeOnce          sync.Once
	tableAwareBrokerSelector
}

type externalView struct {
	SimpleFields map[string]string              `json:"simpleFields"`
	MapFields    map[string](map[string]string) `json:"mapFields"`
	ListFields   map[string]([]string)          `json:"listFields"`
	ID           string                         `json:"id"`
}

func (s *dynamicBrokerSelector) init() error {
	sessionTimeout := s.zkConfig.SessionTimeoutSec
	if sessionTimeout <= 0 {
		sessionTimeout = defaultZkSessionTimeoutSec
	}
	var err error
	s.zkConn, _, err = zk.Connect(
		s.zkConfig.ZookeeperPath,
		time.Duration(sessionTimeout)*time.Second,
		zk.WithLogger(log.StandardLogger()),
	)
	if err != nil {
		log.Errorf("Failed to connect to zookeeper: %v", s.zkConfig.ZookeeperPath)
		return err
	}
	s.externalViewZkPath = s.zkConfig.PathPrefix + "/" + brokerExternalViewPath
	s.readZNode = func(path string) ([]byte, error) {
		node, _, err := s.zkConn.Get(path)
		if err != nil {
			log.Errorf("Failed to read zk: %s, ExternalView path: %s", s.zkConfig.ZookeeperPath, path)
			return nil, err
		}
		return node, nil
	}
	s.watchZNode = func(path string) (<-chan zk.Event, error) {
		_, _, watch, err := s.zkConn.GetW(path)
		return watch, err
	}
	watch, err := s.watchExternalView()
	if err != nil {
		return err
	}
	if err = s.refreshExternalView(); err != nil {
		return err
	}
	s.done = make(chan struct{})
	go s.watchLoop(watch)
	return nil
}

func (s *dynamicBrokerSelector) watchExternalView() (<-chan zk.Event, error) {
	watch, err := s.watchZNode(s.externalViewZkPath)
	if err != nil {
		log.Errorf("Failed to set a watcher on ExternalView path: %s, Error: %v", s.externalViewZkPath, err)
		return nil, err
	}
	return watch, nil
}

// watchLoop refreshes the mapping on every data change. ZooKeeper watches fire once, so the
// watch is re-armed after each event.
func (s *dynamicBrokerSelector) watchLoop(watch <-chan zk.Event) {
	for {
		select {
		case <-s.done:
			return
		case ev := <-watch:
			if ev.Err != nil {
				log.Errorf("ExternalView watcher error: %v", ev.Err)
			} else if ev.Type == zk.EventNodeDataChanged {
				if err := s.refreshExternalView(); err != nil {
					log.Errorf("Failed to refresh ExternalView: %v", err)
				}
			}
		}
		for {
			next, err := s.watchExternalView()
			if err == nil {
				watch = next
				break
			}
			select {
			case <-s.done:
				return
			case <-time.After(watchRetryInterval):
			}
		}
	}
}

func (s *dynamicBrokerSelector) close() {
	s.closeOnce.Do(func() {
		if s.done != nil {
			close(s.done)
		}
		if s.zkConn != nil {
			s.zkConn.Close()
		}
	})
}

func (s *dynamicBrokerSelector) refreshExternalView() error {
	if s.readZNode == nil {
		return fmt.Errorf("no method defined to read from a ZNode")
	}
	node, err := s.readZNode(s.externalViewZkPath)
	if err != nil {
		return err
	}
	ev, err := getExternalView(node)
	if err != nil {
		return err
	}
	s.update(generateNewBrokerMappingExternalView(ev))
	return nil
}

func getExternalView(evBytes []byte) (*externalView, error) {
	var ev externalView
	if err := json.Unmarshal(evBytes, &ev); err != nil {
		log.Errorf("Failed to unmarshal ExternalView: %s, Error: %v", evBytes, err)
		return nil, err
	}
	return &ev, nil
}

// generateNewBrokerMappingExternalView merges the OFFLINE and REALTIME halves of hybrid tables.
// Broker lists are distinct and sorted.
func generateNewBrokerMappingExternalView(ev *externalView) (map[string]([]string), []string) {
	tableBrokers := map[string]map[string]struct{}{}
	allBrokers := map[string]struct{}{}
	for table, brokerMapping := range ev.MapFields {
		tableName := extractTableName(table)
		if tableBrokers[tableName] == nil {
			tableBrokers[tableName] = map[string]struct{}{}
		}
		for _, broker := range extractBrokers(brokerMapping) {
			tableBrokers[tableName][broker] = struct{}{}
			allBrokers[broker] = struct{}{}
		}
	}
	tableBrokerMap := make(map[string]([]string), len(tableBrokers))
	for tableName, brokers := range tableBrokers {
		tableBrokerMap[tableName] = slices.Sorted(maps.Keys(brokers))
	}
	return tableBrokerMap, slices.Sorted(maps.Keys(allBrokers))
}

func extractBrokers(brokerMap map[string]string) []string {
	brokerList := []string{}
	for brokerName, status := range brokerMap {
		if status == "ONLINE" {
			host, port, err := extractBrokerHostPort(brokerName)
			if err == nil {
				brokerList = append(brokerList, strings.Join([]string{host, port}, ":"))
			}
		}
	}
	return brokerList
}

func extractBrokerHostPort(brokerKey string) (string, string, error) {
	splits := strings.Split(brokerKey, "_")
	if len(splits) < 3 {
		err := fmt.Errorf("invalid broker key: %s, should be in the format of Broker_[hostname]_[port]", brokerKey)
		log.Error(err)
		return "", "", err
	}
	_, err := strconv.Atoi(splits[len(splits)-1])
	if err != nil {
		log.Errorf("Failed to parse broker port:%s to integer", splits[len(splits)-1])
		return "", "", err
	}
	// host names may contain underscores
	return strings.Join(splits[1:len(splits)-1], "_"), splits[len(splits)-1], nil
}
