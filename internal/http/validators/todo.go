package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	dto "todo-api.com/todo-api/internal/data_models"
	apperrors "todo-api.com/todo-api/internal/errors"
)

const createTodoSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": ["string", "null"]}
	}
}`

const updateTodoSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": ["string", "null"]},
		"completed": {"type": "boolean"}
	}
}`

var (
	createTodo = mustCompile("https://todo-api.com/schemas/create_todo.json", createTodoSchema)
	updateTodo = mustCompile("https://todo-api.com/schemas/update_todo.json", updateTodoSchema)
)

func mustCompile(url, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(url)
}

func ValidateCreateTodoRequest(body []byte) (dto.CreateTodoRequest, error) {
	var req dto.CreateTodoRequest
	if err := validate(createTodo, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	return req, nil
}

func ValidateUpdateTodoRequest(body []byte) (dto.UpdateTodoRequest, error) {
	var req dto.UpdateTodoRequest
	if err := validate(updateTodo, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	return req, nil
}

func validate(schema *jsonschema.Schema, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError reports the first leaf cause, which names the offending
// field instead of the enclosing object.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return apperrors.Validation("%s", err.Error())
	}

	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "" {
		return apperrors.Validation("%s", ve.Message)
	}
	return apperrors.Validation("%s: %s", field, ve.Message)
}
