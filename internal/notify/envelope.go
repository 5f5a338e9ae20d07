// Package notify decodes the nested job-completion notification that
// arrives on the buffering queue: the queue message body wraps a topic
// notification, whose Message field wraps the job payload.
package notify

import "encoding/json"

// StatusSucceeded is the analysis service's terminal success status.
// Any other status routes the document to the error location.
const StatusSucceeded = "SUCCEEDED"

// topicEnvelope is the outer topic-notification wrapper.
type topicEnvelope struct {
	Message string `json:"Message"`
}

// Completion is the job payload carried inside the topic notification.
type Completion struct {
	JobID            string           `json:"JobId"`
	Status           string           `json:"Status"`
	DocumentLocation DocumentLocation `json:"DocumentLocation"`
}

// DocumentLocation points at the source document the job analyzed.
type DocumentLocation struct {
	Bucket string `json:"S3Bucket"`
	Key    string `json:"S3ObjectName"`
}

// DecodeError marks a permanently malformed notification. What the
// consumer does with it (drop vs redeliver) is policy, not taxonomy.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode notification: " + e.Stage
	}
	return "decode notification: " + e.Stage + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeCompletion unwraps a queue message body through exactly two
// levels: body -> topic envelope -> job payload.
func DecodeCompletion(body string) (Completion, error) {
	var envelope topicEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return Completion{}, &DecodeError{Stage: "topic envelope", Err: err}
	}

	var completion Completion
	if err := json.Unmarshal([]byte(envelope.Message), &completion); err != nil {
		return Completion{}, &DecodeError{Stage: "job payload", Err: err}
	}
	if completion.JobID == "" {
		return Completion{}, &DecodeError{Stage: "job payload: missing JobId"}
	}
	return completion, nil
}
