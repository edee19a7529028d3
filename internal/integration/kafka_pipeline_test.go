//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/fdv-converter/internal/adapter/kafka"
	"github.com/couchcryptid/fdv-converter/internal/config"
	"github.com/couchcryptid/fdv-converter/internal/domain"
	"github.com/couchcryptid/fdv-converter/internal/observability"
	"github.com/couchcryptid/fdv-converter/internal/pipeline"
)

const testTopic = "test-job-events"

// publishedEvent holds a deserialized message read from the job-event topic.
type publishedEvent struct {
	Event   domain.JobEvent
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("fdv-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// readEvent reads a single message from the consumer and deserializes it.
func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from job-event topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.JobEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal job event")

	return publishedEvent{Event: event, Key: string(msg.Key), Headers: headers}
}

func writeLog(t *testing.T, dir, name, header string, value func(i int) string) string {
	t.Helper()
	start := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	lines := []string{header}
	for i := range 12 {
		ts := start.Add(time.Duration(i) * 5 * time.Minute)
		lines = append(lines, ts.Format("02/01/2006 15:04")+","+value(i))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

// TestBatchPublishesJobEvents runs a lenient batch against real Kafka and
// verifies one keyed event per job arrives with status headers.
func TestBatchPublishesJobEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	in, out := t.TempDir(), t.TempDir()
	jobs := []pipeline.Job{
		{
			FilePath: writeLog(t, in, "SiteA1.csv", "Timestamp,100_1|Pipe|Depth|mm,100_1|Pipe|Velocity|m/s",
				func(i int) string { return fmt.Sprintf("%d,0.%d", 150+i, 40+i) }),
			PipeShape: "Circular",
			PipeSize:  "450",
		},
		{FilePath: filepath.Join(in, "missing.csv")},
		{
			FilePath: writeLog(t, in, "RG7.csv", "Timestamp,200_1|Gauge|Rainfall|mm",
				func(i int) string { return fmt.Sprintf("%.1f", float64(i%3)*0.2) }),
		},
	}

	metrics := observability.NewMetricsForTesting()
	conv := pipeline.NewConverter(nil, discardLogger(), metrics)
	p := pipeline.New(conv, writer, discardLogger(), metrics, pipeline.Options{Workers: 2})

	report, err := p.Run(ctx, jobs, out)
	require.NoError(t, err)
	require.NotEmpty(t, report.Archive)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-events-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	byInput := make(map[string]publishedEvent, len(jobs))
	for range jobs {
		pe := readEvent(ctx, t, consumer)
		byInput[filepath.Base(pe.Event.Input)] = pe
	}
	require.Len(t, byInput, 3)

	for name, pe := range byInput {
		assert.Equal(t, report.RunID, pe.Key, name)
		assert.Equal(t, string(pe.Event.Status), pe.Headers["status"], name)
		_, err := time.Parse(time.RFC3339, pe.Headers["processed_at"])
		assert.NoError(t, err, "processed_at should be valid RFC3339")
	}

	flow := byInput["SiteA1.csv"].Event
	assert.Equal(t, domain.JobSucceeded, flow.Status)
	assert.Equal(t, domain.MonitorFlow, flow.MonitorType)
	assert.Equal(t, 5*time.Minute, flow.Interval)
	assert.Equal(t, 12, flow.Samples)
	assert.NotEmpty(t, flow.Digest)

	assert.Equal(t, domain.JobFailed, byInput["missing.csv"].Event.Status)
	assert.Contains(t, byInput["missing.csv"].Event.Error, "missing.csv")

	rain := byInput["RG7.csv"].Event
	assert.Equal(t, domain.JobSucceeded, rain.Status)
	assert.Equal(t, domain.MonitorRainfall, rain.MonitorType)
	assert.Equal(t, "Flow", byInput["SiteA1.csv"].Headers["monitor_type"])
}
