package server

import (
	"pantry/internal/storage"
	"pantry/internal/todo"
)

const rootGreeting = "Hello, this message comes from the pantry API root endpoint!"

type todosResponse struct {
	Total int64       `json:"total"`
	Todos []todo.Todo `json:"todos"`
}

type createTodoRequest struct {
	Label    *string `json:"label"`
	Quantity *int    `json:"quantity"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type listFilesResponse struct {
	Files []storage.Object `json:"files"`
}

type bucketTypeResponse struct {
	BucketType string `json:"bucket_type"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
