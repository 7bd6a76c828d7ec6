package handler

import (
	"strings"

	"taskhub-api/internal/middleware"
	"taskhub-api/internal/repository"
	"taskhub-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasks lists the organization's tasks.
// GET /api/v1/tasks?status=&category=&sort_by=&order=asc|desc
func (h *TaskHandler) GetTasks(c *fiber.Ctx) error {
	filter := repository.TaskFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort_by"),
		Desc:     strings.EqualFold(c.Query("order"), "desc"),
	}

	tasks, err := h.taskService.List(c.UserContext(), middleware.CallerFrom(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": tasks, "total": len(tasks)})
}

// GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	task, err := h.taskService.Get(c.UserContext(), middleware.CallerFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// POST /api/v1/tasks
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req service.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	task, err := h.taskService.Create(c.UserContext(), middleware.CallerFrom(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"data":    task,
	})
}

// PUT /api/v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req service.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	task, err := h.taskService.Update(c.UserContext(), middleware.CallerFrom(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"data":    task,
	})
}

// DELETE /api/v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	if err := h.taskService.Delete(c.UserContext(), middleware.CallerFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}
