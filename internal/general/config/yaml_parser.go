package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseYAML parses the specific two-level mapping used by config.yaml
func parseYAML(r io.Reader, cfg *Config) error {
	type section int
	const (
		none section = iota
		db
		rm
		ws
		dr
		jw
		sm
		mt
	)

	scanner := bufio.NewScanner(r)
	var cur section

	lineNo := 0
	seenTop := map[section]bool{}

	markTop := func(s section, name string) error {
		if seenTop[s] {
			return fmt.Errorf("line %d: duplicate %q section", lineNo, name)
		}
		seenTop[s] = true
		cur = s
		return nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		// strip comments
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}

		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// top-level section? (no leading spaces)
		if line[0] != ' ' && line[0] != '\t' {
			var err error
			switch strings.TrimSpace(line) {
			case "database:":
				err = markTop(db, "database")
			case "rabbitmq:":
				err = markTop(rm, "rabbitmq")
			case "websocket:":
				err = markTop(ws, "websocket")
			case "directions:":
				err = markTop(dr, "directions")
			case "jwt:":
				err = markTop(jw, "jwt")
			case "simulator:":
				err = markTop(sm, "simulator")
			case "metrics:":
				err = markTop(mt, "metrics")
			default:
				err = fmt.Errorf("line %d: unknown top-level key %q", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			if err != nil {
				return err
			}
			continue
		}

		if cur == none {
			return fmt.Errorf("line %d: key outside of any section", lineNo)
		}

		key, val, ok := splitKV(strings.TrimSpace(line))
		if !ok {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		val = trimQuotes(val)

		switch cur {
		case db:
			switch key {
			case "host":
				cfg.Database.Host = val
			case "port":
				p, err := strconv.Atoi(val)
				if err != nil {
					return fmt.Errorf("line %d: database.port must be int: %w", lineNo, err)
				}
				cfg.Database.Port = p
			case "user":
				cfg.Database.User = val
			case "password":
				cfg.Database.Password = val
			case "database":
				cfg.Database.Name = val
			default:
				return fmt.Errorf("line %d: unknown field for [database]: %q", lineNo, key)
			}

		case rm:
			switch key {
			case "host":
				cfg.RabbitMQ.Host = val
			case "port":
				p, err := strconv.Atoi(val)
				if err != nil {
					return fmt.Errorf("line %d: rabbitmq.port must be int: %w", lineNo, err)
				}
				cfg.RabbitMQ.Port = p
			case "user":
				cfg.RabbitMQ.User = val
			case "password":
				cfg.RabbitMQ.Password = val
			default:
				return fmt.Errorf("line %d: unknown field for [rabbitmq]: %q", lineNo, key)
			}

		case ws:
			switch key {
			case "port":
				p, err := strconv.Atoi(val)
				if err != nil {
					return fmt.Errorf("line %d: websocket.port must be int: %w", lineNo, err)
				}
				cfg.WebSocket.Port = p
			default:
				return fmt.Errorf("line %d: unknown field for [websocket]: %q", lineNo, key)
			}

		case dr:
			switch key {
			case "endpoint":
				cfg.Directions.Endpoint = val
			case "api_key":
				cfg.Directions.APIKey = val
			case "api_host":
				cfg.Directions.APIHost = val
			default:
				return fmt.Errorf("line %d: unknown field for [directions]: %q", lineNo, key)
			}

		case jw:
			switch key {
			case "secret_key":
				cfg.JWT.SecretKey = val
			default:
				return fmt.Errorf("line %d: unknown field for [jwt]: %q", lineNo, key)
			}

		case sm:
			switch key {
			case "tick_interval_seconds":
				f, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return fmt.Errorf("line %d: simulator.tick_interval_seconds must be float: %w", lineNo, err)
				}
				cfg.Simulator.TickIntervalSeconds = f
			case "tick_multiplier":
				f, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return fmt.Errorf("line %d: simulator.tick_multiplier must be float: %w", lineNo, err)
				}
				cfg.Simulator.TickMultiplier = f
			case "mock_offset_meters":
				f, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return fmt.Errorf("line %d: simulator.mock_offset_meters must be float: %w", lineNo, err)
				}
				cfg.Simulator.MockOffsetMeters = f
			default:
				return fmt.Errorf("line %d: unknown field for [simulator]: %q", lineNo, key)
			}

		case mt:
			switch key {
			case "addr":
				cfg.Metrics.Addr = val
			default:
				return fmt.Errorf("line %d: unknown field for [metrics]: %q", lineNo, key)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}

	return nil
}

func splitKV(line string) (key, val string, ok bool) {
	i := strings.IndexRune(line, ':')
	if i <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	val = strings.TrimSpace(line[i+1:])
	if key == "" || val == "" {
		return "", "", false
	}
	return key, val, true
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
