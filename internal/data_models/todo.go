package dto

type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTodoRequest carries a partial update. Keys missing from the
// request body stay unset and leave the stored value untouched.
type UpdateTodoRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
}

type ListTodosQuery struct {
	Offset int
	Limit  int
}

type ErrorResponse struct {
	Message string `json:"message"`
}
