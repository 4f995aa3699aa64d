// Package channel defines the transport boundary for outgoing
// notifications. Any implementation satisfying Sender (HTTP gateway, SDK,
// message queue) is substitutable; the dispatcher only sees this contract.
package channel

import (
	"context"
	"errors"
)

// ErrSendFailed marks a delivery the transport could not complete.
var ErrSendFailed = errors.New("send failed")

type Sender interface {
	SendSMS(ctx context.Context, phone, message string) error
	SendEmail(ctx context.Context, address, subject, message string) error
	SendPush(ctx context.Context, deviceID, title, message string) error
}
