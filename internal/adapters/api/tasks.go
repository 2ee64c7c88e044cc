package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

const attachmentsField = "attachments"

type TaskService struct {
	gateway *Gateway
}

var _ ports.TaskAPI = (*TaskService)(nil)

func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) (domain.TaskPage, error) {
	req := get("/api/tasks")
	req.Query = filterQuery(filter)

	var page domain.TaskPage
	err := fetch(ctx, s.gateway, req, &page)
	return page, err
}

func (s *TaskService) Get(ctx context.Context, id string) (domain.Task, error) {
	var task domain.Task
	err := fetch(ctx, s.gateway, get("/api/tasks/"+pathID(id)), &task)
	return task, err
}

// Create posts JSON, or multipart form data when attachments are given.
func (s *TaskService) Create(ctx context.Context, input domain.TaskInput, attachments []domain.Attachment) (domain.Task, error) {
	req := Request{Method: http.MethodPost, Path: "/api/tasks"}
	if len(attachments) > 0 {
		req.Multipart = taskForm(input, attachments)
	} else {
		req.Body = input
	}

	var task domain.Task
	err := fetch(ctx, s.gateway, req, &task)
	return task, err
}

func (s *TaskService) Update(ctx context.Context, id string, input domain.TaskInput) (domain.Task, error) {
	var task domain.Task
	err := fetch(ctx, s.gateway, Request{Method: http.MethodPut, Path: "/api/tasks/" + pathID(id), Body: input}, &task)
	return task, err
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return fetch(ctx, s.gateway, Request{Method: http.MethodDelete, Path: "/api/tasks/" + pathID(id)}, nil)
}

func (s *TaskService) Mine(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := fetch(ctx, s.gateway, get("/api/tasks/my/tasks"), &tasks)
	return tasks, err
}

func filterQuery(filter domain.TaskFilter) url.Values {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.MinBudget > 0 {
		query.Set("minBudget", formatAmount(filter.MinBudget))
	}
	if filter.MaxBudget > 0 {
		query.Set("maxBudget", formatAmount(filter.MaxBudget))
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	return query
}

func taskForm(input domain.TaskInput, attachments []domain.Attachment) *Form {
	form := &Form{}
	add := func(name, value string) {
		if value != "" {
			form.Fields = append(form.Fields, FormField{Name: name, Value: value})
		}
	}
	add("title", input.Title)
	add("description", input.Description)
	add("category", input.Category)
	if input.Budget > 0 {
		add("budget", formatAmount(input.Budget))
	}
	add("deadline", input.Deadline)
	add("status", string(input.Status))

	for _, attachment := range attachments {
		form.Files = append(form.Files, FormFile{Field: attachmentsField, Name: attachment.Name, Content: attachment.Content})
	}
	return form
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
