package services

import (
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// APNsPusher delivers push notifications through Apple's push service.
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher loads the p12 certificate and builds a production or sandbox
// client.
func NewAPNsPusher(certFile, certPass, topic string, sandbox bool) (*APNsPusher, error) {
	cert, err := certificate.FromP12File(certFile, certPass)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert).Production()
	if sandbox {
		client = apns2.NewClient(cert).Development()
	}

	return &APNsPusher{client: client, topic: topic}, nil
}

// Push sends an alert notification to a device token
func (p *APNsPusher) Push(deviceToken, title, body string) error {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := p.client.Push(notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}
	return nil
}
