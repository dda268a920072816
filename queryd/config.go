package queryd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/teamspeak-go/ts3query/query"
)

/* Example configuration:

server:
  address: 127.0.0.1:10011
  username: serveradmin
  password: secret
  serverid: 1
  nickname: monitor
  events: [server, channel, textserver]
metrics:
  address: 127.0.0.1:9188
logging:
  syslogfacility: local1
*/

// Location of the config file on disk; overriden by flags
var configFile = flag.String("c", "/etc/ts3queryd.conf", "Path to YAML config file")
var pidFile = flag.String("p", "/var/run/ts3queryd.pid", "Path to PID file")
var sendSignal = flag.String("s", "", "Send signal to daemon (either \"stop\" or \"reload\")")
var foreground = flag.Bool("f", false, "Run in foreground (not as daemon)")
var pprof = flag.Bool("pprof", false, "Run pprof")

const (
	ENV_CONFFILE = "_TS3QUERYD_CONFFILE"
	ENV_PIDFILE  = "_TS3QUERYD_PIDFILE"

	QUERY_DEFAULT_PORT = 10011
)

// Config holds the config for the monitor: the server to watch, the metrics
// endpoint and the logging setup
type Config struct {
	Server  ServerConfig  // the query endpoint to monitor
	Metrics MetricsConfig // Prometheus exposition
	Logging LogConfig     // Configuration for logging
}

// ServerConfig holds the config for the monitored query endpoint
type ServerConfig struct {
	Address   string   // host:port of the ServerQuery interface
	Username  string   // query login name
	Password  string   // query login password
	ServerID  int      // virtual server to select, 0 to skip
	Port      int      // voice port to select instead of ServerID
	Nickname  string   // nickname for the query client
	KeepAlive int      // keep-alive period in seconds, 0 for the default
	Events    []string // notification scopes to register
}

// MetricsConfig has the configuration for the Prometheus endpoint
type MetricsConfig struct {
	Address string // listen address, empty to disable
}

// eventKinds maps configuration text to notification scopes
var eventKinds = map[string]query.EventKind{
	"server":      query.EventServer,
	"channel":     query.EventChannel,
	"textserver":  query.EventTextServer,
	"textchannel": query.EventTextChannel,
	"textprivate": query.EventTextPrivate,
	"tokenused":   query.EventTokenUsed,
}

// EventKinds resolves the configured notification scope names
func (s *ServerConfig) EventKinds() ([]query.EventKind, error) {
	kinds := make([]query.EventKind, 0, len(s.Events))
	for _, name := range s.Events {
		kind, ok := eventKinds[name]
		if !ok {
			return nil, fmt.Errorf("Unknown event scope: %s", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// KeepAlivePeriod returns the configured keep-alive as a duration
func (s *ServerConfig) KeepAlivePeriod() time.Duration {
	return time.Duration(s.KeepAlive) * time.Second
}

// ParseConfig parses the YAML configuration provided
func ParseConfig() (*Config, error) {
	buf, err := os.ReadFile(*configFile)
	if err != nil {
		return nil, err
	}
	c := &Config{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}
	if c.Server.Address == "" {
		c.Server.Address = fmt.Sprintf("127.0.0.1:%d", QUERY_DEFAULT_PORT)
	}
	if c.Server.ServerID != 0 && c.Server.Port != 0 {
		return nil, fmt.Errorf("serverid and port are mutually exclusive")
	}
	if _, err := c.Server.EventKinds(); err != nil {
		return nil, err
	}
	return c, nil
}
