package orders

// Response is the wire-level progress update this demo streams to clients,
// grounded on OrderResponse.java's sealed set of status constructors.
type Response struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Step      string `json:"step,omitempty"`
	Content   string `json:"content,omitempty"`
}

func processingResponse(sessionID, step, content string) Response {
	return Response{SessionID: sessionID, Status: "processing", Step: step, Content: content}
}

func completedResponse(sessionID, message string) Response {
	return Response{SessionID: sessionID, Status: "completed", Message: message}
}

func resumedResponse(sessionID, message string) Response {
	return Response{SessionID: sessionID, Status: "resumed", Message: message}
}

func interruptedResponse(sessionID, message string) Response {
	return Response{SessionID: sessionID, Status: "interrupted", Message: message}
}

func notFoundResponse(sessionID, message string) Response {
	return Response{SessionID: sessionID, Status: "not_found", Message: message}
}

func foundResponse(sessionID, message string) Response {
	return Response{SessionID: sessionID, Status: "found", Message: message}
}

func errorResponse(sessionID, message string) Response {
	return Response{SessionID: sessionID, Status: "error", Message: message}
}
