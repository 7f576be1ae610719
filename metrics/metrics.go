// Package metrics publishes platform counters to CloudWatch.
// file: metrics/metrics.go
package metrics

import (
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"go-hackhub/logger"
)

// Publisher records platform events. Implementations must not block callers
// on network I/O for longer than a single request.
type Publisher interface {
	RelayConnections(count int)
	Subscription(hackathonID string, delta int)
	InviteSent(hackathonID string)
	GroupFormed(hackathonID string)
}

// Noop discards every metric. It is used when metrics are disabled.
type Noop struct{}

func (Noop) RelayConnections(int)     {}
func (Noop) Subscription(string, int) {}
func (Noop) InviteSent(string)        {}
func (Noop) GroupFormed(string)       {}

// CloudWatch pushes each metric as a datum in namespace.
type CloudWatch struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string

	// now is overridable in tests
	now func() time.Time
	wg  sync.WaitGroup
}

// NewCloudWatch builds a publisher from the default AWS session chain.
func NewCloudWatch(namespace string) (*CloudWatch, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return NewCloudWatchWithClient(cloudwatch.New(sess), namespace), nil
}

// NewCloudWatchWithClient wraps an existing CloudWatch client.
func NewCloudWatchWithClient(client cloudwatchiface.CloudWatchAPI, namespace string) *CloudWatch {
	return &CloudWatch{client: client, namespace: namespace, now: time.Now}
}

// RelayConnections pushes current WebSocket connection count.
func (c *CloudWatch) RelayConnections(count int) {
	c.put("RelayConnections", float64(count), cloudwatch.StandardUnitCount, nil)
}

// Subscription pushes +1 for a subscribe and -1 for an unsubscribe.
func (c *CloudWatch) Subscription(hackathonID string, delta int) {
	c.put("Subscriptions", float64(delta), cloudwatch.StandardUnitCount, hackathonDim(hackathonID))
}

// InviteSent counts group invites.
func (c *CloudWatch) InviteSent(hackathonID string) {
	c.put("InvitesSent", 1, cloudwatch.StandardUnitCount, hackathonDim(hackathonID))
}

// GroupFormed counts newly minted groups.
func (c *CloudWatch) GroupFormed(hackathonID string) {
	c.put("GroupsFormed", 1, cloudwatch.StandardUnitCount, hackathonDim(hackathonID))
}

// Flush waits for in-flight PutMetricData calls.
func (c *CloudWatch) Flush() {
	c.wg.Wait()
}

func hackathonDim(hackathonID string) []*cloudwatch.Dimension {
	return []*cloudwatch.Dimension{{
		Name:  aws.String("HackathonID"),
		Value: aws.String(hackathonID),
	}}
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func (c *CloudWatch) put(metricName string, value float64, unit string, dims []*cloudwatch.Dimension) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Dimensions: dims,
				Timestamp:  aws.Time(c.now()),
				Value:      aws.Float64(value),
				Unit:       aws.String(unit),
			},
		},
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.client.PutMetricData(input); err != nil {
			logger.Error.Printf("[metrics.put] CloudWatch metric failed (%s): %v", metricName, err)
		}
	}()
}
