package ingestion

import (
	"errors"
	"fmt"
	"sync"

	"rigor-logistics/internal/logger"
	pkgmqtt "rigor-logistics/pkg/mqtt"

	"go.uber.org/zap"
)

type MQTTIngestionConfig struct {
	ClientConfig  *pkgmqtt.Config
	LocationTopic string
	QoS           byte
}

// MQTTIngestionClient wires MQTT location messages into the processor.
type MQTTIngestionClient struct {
	cfg       *MQTTIngestionConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu      sync.Mutex
	started bool
}

func NewMQTTIngestionClient(cfg *MQTTIngestionConfig, processor *Processor) (*MQTTIngestionClient, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt ingestion config is not configured")
	}
	if cfg.LocationTopic == "" {
		return nil, errors.New("no MQTT location topic configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	return &MQTTIngestionClient{
		cfg:       cfg,
		client:    pkgmqtt.NewClient(cfg.ClientConfig),
		processor: processor,
	}, nil
}

func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return err
	}
	if err := c.client.Subscribe(c.cfg.LocationTopic, c.cfg.QoS, c.handleLocationMessage); err != nil {
		c.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", c.cfg.LocationTopic, err)
	}

	c.started = true
	return nil
}

func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	if err := c.client.Unsubscribe(c.cfg.LocationTopic); err != nil {
		logger.Warn("Failed to unsubscribe from MQTT topic", zap.String("topic", c.cfg.LocationTopic), zap.Error(err))
	}
	c.client.Disconnect()
	c.started = false
}

func (c *MQTTIngestionClient) handleLocationMessage(topic string, payload []byte) {
	msg, err := ParseLocationMessage(topic, payload)
	if err != nil {
		logger.Warn("Invalid location payload", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := c.processor.Process(msg); err != nil {
		logger.Debug("Location message rejected", zap.String("topic", topic), zap.Error(err))
	}
}
