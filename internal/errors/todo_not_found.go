package errors

var ErrTodoNotFound = &Exception{
	Kind:    KindNotFound,
	Message: "todo not found",
}
