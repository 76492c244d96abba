// Package metrics - metrics/metrics.go
// file: metrics/metrics.go
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/aws/aws-xray-sdk-go/xray"

	"conference-desk/logger"
)

// Namespace for all conference desk metrics
const Namespace = "ConferenceDesk"

// CloudWatch pushes capacity and on-site gauges. Every Publish call returns
// immediately; the PutMetricData request runs in the background.
type CloudWatch struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
	timeout   time.Duration
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewCloudWatch creates a client for region. With tracing on, every call is
// recorded as an X-Ray subsegment.
func NewCloudWatch(region string, tracing bool) (*CloudWatch, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	cw := cloudwatch.New(sess)
	if tracing {
		xray.AWS(cw.Client)
	}
	return New(cw, Namespace), nil
}

// New wraps an existing CloudWatch API client.
func New(client cloudwatchiface.CloudWatchAPI, namespace string) *CloudWatch {
	return &CloudWatch{client: client, namespace: namespace, timeout: 5 * time.Second, now: time.Now}
}

// PublishTrackUsage pushes used and remaining slots for one track.
func (c *CloudWatch) PublishTrackUsage(track string, used, max, remaining int) {
	dims := []*cloudwatch.Dimension{{Name: aws.String("Track"), Value: aws.String(track)}}
	c.putMetric(
		c.datum("TrackUsed", float64(used), cloudwatch.StandardUnitCount, dims),
		c.datum("TrackRemaining", float64(remaining), cloudwatch.StandardUnitCount, dims),
	)
}

// PublishTotalParticipants pushes the event-wide participant gauge.
func (c *CloudWatch) PublishTotalParticipants(total, max int) {
	c.putMetric(c.datum("TotalParticipants", float64(total), cloudwatch.StandardUnitCount, nil))
}

// PublishActionRecorded counts one accepted scan.
func (c *CloudWatch) PublishActionRecorded(action string) {
	dims := []*cloudwatch.Dimension{{Name: aws.String("Action"), Value: aws.String(action)}}
	c.putMetric(c.datum("ActionsRecorded", 1, cloudwatch.StandardUnitCount, dims))
}

// PublishDashboardConnections pushes the current dashboard WebSocket count.
func (c *CloudWatch) PublishDashboardConnections(count int) {
	c.putMetric(c.datum("DashboardConnections", float64(count), cloudwatch.StandardUnitCount, nil))
}

// Flush waits for in-flight requests.
func (c *CloudWatch) Flush() {
	c.wg.Wait()
}

func (c *CloudWatch) datum(name string, value float64, unit string, dims []*cloudwatch.Dimension) *cloudwatch.MetricDatum {
	return &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Timestamp:  aws.Time(c.now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func (c *CloudWatch) putMetric(data ...*cloudwatch.MetricDatum) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		_, err := c.client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(c.namespace),
			MetricData: data,
		})
		if err != nil {
			logger.Error().Err(err).Str("metric", aws.StringValue(data[0].MetricName)).Msg("[putMetric] CloudWatch metric failed")
		}
	}()
}
