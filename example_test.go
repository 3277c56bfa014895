package protocol_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/zero-day-ai/protocol"
	"github.com/zero-day-ai/protocol/exception"
	"github.com/zero-day-ai/protocol/shape"
)

type QueueDoesNotExist struct {
	exception.Base
	QueueUrl string
}

func Example() {
	f, err := protocol.NewFactory(
		protocol.WithServiceName("queue"),
		protocol.WithAPIVersion("2012-11-05"),
		protocol.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		protocol.WithException("AWS.SimpleQueueService.NonExistentQueue",
			shape.Exception("QueueDoesNotExist", shape.NewMember("QueueUrl", shape.String())),
			func() exception.Exception { return &QueueDoesNotExist{} }),
	)
	if err != nil {
		panic(err)
	}

	op := &shape.Operation{
		Name:   "GetQueueUrl",
		Input:  shape.Structure("GetQueueUrlRequest", shape.NewMember("QueueName", shape.String())),
		Output: shape.Structure("GetQueueUrlResult", shape.NewMember("QueueUrl", shape.String())),
	}

	m, _ := f.BuildRequestMarshaller(op)
	req, _ := m.Marshal(context.Background(), map[string]any{"QueueName": "jobs"})
	fmt.Println(string(req.Body))

	h, _ := f.BuildSuccessHandler(op)
	var out struct{ QueueUrl string }
	_, _ = h.Handle(context.Background(), &protocol.RawResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`<GetQueueUrlResponse><GetQueueUrlResult><QueueUrl>https://queue.example.com/1/jobs</QueueUrl></GetQueueUrlResult></GetQueueUrlResponse>`),
	}, &out)
	fmt.Println(out.QueueUrl)

	exc := f.ErrorHandler().Handle(context.Background(), &protocol.RawResponse{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`<ErrorResponse><Error><Code>AWS.SimpleQueueService.NonExistentQueue</Code><Message>no such queue</Message></Error><RequestId>r-1</RequestId></ErrorResponse>`),
	})
	if missing, ok := exc.(*QueueDoesNotExist); ok {
		fmt.Println(missing.Error())
	}

	// Output:
	// Action=GetQueueUrl&QueueName=jobs&Version=2012-11-05
	// https://queue.example.com/1/jobs
	// AWS.SimpleQueueService.NonExistentQueue: no such queue (Service: queue, Status Code: 400, Request ID: r-1)
}

func ExampleDialect_QueryCompatible() {
	f, err := protocol.NewFactory(
		protocol.WithDialect(protocol.JSON10.QueryCompatible()),
		protocol.WithTargetPrefix("AmazonSQS"),
		protocol.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		panic(err)
	}

	resp := &protocol.RawResponse{
		StatusCode: http.StatusBadRequest,
		Header:     http.Header{},
		Body:       []byte(`{"__type":"com.amazonaws.sqs#QueueDoesNotExist","message":"gone"}`),
	}
	resp.Header.Set("X-Amzn-Query-Error", "AWS.SimpleQueueService.NonExistentQueue;Sender")

	exc := f.ErrorHandler().Handle(context.Background(), resp)
	fmt.Println(exception.Code(exc))
	// Output: AWS.SimpleQueueService.NonExistentQueue
}
