// Package push runs the UDP push receiver: the registry notifies the
// client of service changes out-of-band by sending a gzip-compressed
// JSON packet to a port the client reported when querying instances.
package push

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sezi-yuan/nacos-naming-go/pkg/cache"
	"github.com/sezi-yuan/nacos-naming-go/pkg/constants"
	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/metrics"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

const (
	portRangeBase = 54951
	portRangeSize = 1000
	readBufSize   = 65536
)

// PickPort returns a receiver port in the conventional [54951, 55950] range.
func PickPort() uint16 {
	return uint16(portRangeBase + rand.Intn(portRangeSize))
}

// Receiver listens for push notifications and updates holder with
// whatever service snapshot they carry.
type Receiver struct {
	conn   *net.UDPConn
	holder *cache.ServiceHolder
	port   uint16
	logger zerolog.Logger
}

// NewReceiver binds a UDP socket on port and starts the receive loop. The
// loop runs until ctx is canceled.
func NewReceiver(ctx context.Context, port uint16, holder *cache.ServiceHolder) (*Receiver, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(port)})
	if err != nil {
		return nil, err
	}

	r := &Receiver{conn: conn, holder: holder, port: port, logger: log.WithComponent("push")}
	go r.run(ctx)
	return r, nil
}

// Port returns the bound receiver port.
func (r *Receiver) Port() uint16 {
	return r.port
}

func (r *Receiver) run(ctx context.Context) {
	defer r.conn.Close()

	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()

	buf := make([]byte, readBufSize)
	for {
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warn().Err(err).Msg("receive illegal push message")
			continue
		}

		packet, ok := r.parsePacket(buf[:n])
		if !ok {
			metrics.PushDecodeFailuresTotal.Inc()
			continue
		}

		reply := r.buildReply(ctx, packet)
		if _, err := r.conn.WriteToUDP(reply, addr); err != nil {
			r.logger.Error().Err(err).Msg("push channel failed")
		}
	}
}

func (r *Receiver) parsePacket(raw []byte) (model.PushPacket, bool) {
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		r.logger.Warn().Err(err).Msg("receive illegal push message")
		return model.PushPacket{}, false
	}
	defer gz.Close()

	content, err := io.ReadAll(gz)
	if err != nil {
		r.logger.Warn().Err(err).Msg("receive illegal push message")
		return model.PushPacket{}, false
	}

	r.logger.Debug().Str("body", string(content)).Msg("receive push message")

	var packet model.PushPacket
	if err := json.Unmarshal(bytes.TrimSpace(content), &packet); err != nil {
		r.logger.Warn().Err(err).Str("body", string(content)).Msg("receive illegal push message")
		return model.PushPacket{}, false
	}
	return packet, true
}

func (r *Receiver) buildReply(ctx context.Context, packet model.PushPacket) []byte {
	reply := model.PushPacket{Type: "unknown-ack", LastRefTime: packet.LastRefTime}

	switch packet.Type {
	case constants.PushTypeDom, constants.PushTypeService:
		var info model.ServiceInfo
		if err := json.Unmarshal([]byte(packet.Data), &info); err != nil {
			r.logger.Error().Err(err).Str("data", packet.Data).Msg("cannot deserialize push data")
		} else {
			r.holder.UpdateServiceInfo(ctx, info)
		}
		reply.Type = "push-ack"
		metrics.PushPacketsTotal.WithLabelValues(packet.Type).Inc()

	case constants.PushTypeDump:
		encoded, err := json.Marshal(r.holder.Snapshot())
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to serialize service holder map")
		} else {
			reply.Data = string(encoded)
		}
		reply.Type = "dump-ack"
		metrics.PushPacketsTotal.WithLabelValues(packet.Type).Inc()

	default:
		metrics.PushPacketsTotal.WithLabelValues(strings.ToLower(strings.TrimSpace(packet.Type))).Inc()
	}

	out, err := json.Marshal(reply)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to serialize push ack")
		return []byte("{}")
	}
	return out
}
