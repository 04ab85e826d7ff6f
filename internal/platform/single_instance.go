package platform

import (
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"sync"
	"time"

	"gamertimer/internal/core/protocol"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const connectionTimeout = 5 * time.Second

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance lock and receives commands from
// later launches.
type InstanceGuard struct {
	listener net.Listener
	address  string
	log      zerolog.Logger
	wg       sync.WaitGroup
	once     sync.Once
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
func AcquireSingleInstance(appName string, log zerolog.Logger) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.WithStack(ErrAlreadyRunning)
	}
	return &InstanceGuard{
		listener: listener,
		address:  address,
		log:      log.With().Str("module", "single-instance").Logger(),
	}, nil
}

// Serve accepts connections until Release and hands every decoded command to
// handler.
func (guard *InstanceGuard) Serve(handler func(protocol.Command)) {
	guard.wg.Add(1)
	go func() {
		defer guard.wg.Done()

		for {
			conn, err := guard.listener.Accept()
			if err != nil {
				return
			}

			guard.wg.Add(1)
			go func() {
				defer guard.wg.Done()
				guard.handle(conn, handler)
			}()
		}
	}()
}

// Release frees the single instance lock and waits for open connections.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}

	var err error
	guard.once.Do(func() {
		err = guard.listener.Close()
		guard.wg.Wait()
	})
	return errors.Wrap(err, "release instance lock")
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// SendToInstance forwards commands to the running instance.
func SendToInstance(appName string, commands ...protocol.Command) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(appName), connectionTimeout)
	if err != nil {
		return errors.Wrap(err, "connect to running instance")
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(connectionTimeout))
	encoder := protocol.NewEncoder(conn)
	for _, command := range commands {
		if err := encoder.Encode(command); err != nil {
			return errors.Wrap(err, "send command")
		}
	}
	return nil
}

func (guard *InstanceGuard) handle(conn net.Conn, handler func(protocol.Command)) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(connectionTimeout))

	decoder := protocol.NewDecoder(conn)
	for {
		message, err := decoder.Decode()
		switch {
		case errors.Is(err, io.EOF):
			return
		case err != nil:
			guard.log.Warn().Err(err).Msg("invalid message from peer")
			return
		}

		command, ok := message.(protocol.Command)
		if !ok {
			guard.log.Warn().Str("type", fmt.Sprintf("%T", message)).Msg("unexpected message from peer")
			continue
		}
		handler(command)
	}
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
