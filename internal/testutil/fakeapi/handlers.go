package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegisterInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, input.Email) {
			s.mu.Unlock()
			replyError(w, r, http.StatusConflict, "Email already registered")
			return
		}
	}
	user := domain.User{
		ID:        s.newID("u"),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		Bio:       input.Bio,
		Skills:    input.Skills,
		CreatedAt: time.Now().UTC(),
	}
	s.users = append(s.users, user)
	s.mu.Unlock()

	reply(w, r, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID string `json:"userId"`
		Code   string `json:"code"`
	}
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Code != VerificationCode {
		replyError(w, r, http.StatusBadRequest, "Invalid verification code")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == input.UserID {
			s.users[i].IsVerified = true
			access, refresh := s.issue(input.UserID)
			reply(w, r, http.StatusOK, domain.AuthResult{User: s.users[i], AccessToken: access, RefreshToken: refresh})
			return
		}
	}
	replyError(w, r, http.StatusNotFound, "User not found")
}

func (s *Server) resendVerification(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID string `json:"userId"`
	}
	if err := render.DecodeJSON(r.Body, &input); err != nil || input.UserID == "" {
		replyError(w, r, http.StatusBadRequest, "userId is required")
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "message": "Verification code sent"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, input.Email) && input.Password == Password {
			access, refresh := s.issue(user.ID)
			reply(w, r, http.StatusOK, domain.AuthResult{User: user, AccessToken: access, RefreshToken: refresh})
			return
		}
	}
	replyError(w, r, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = render.DecodeJSON(r.Body, &input)

	s.mu.Lock()
	gate := s.refreshGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshStatus != 0 {
		replyError(w, r, s.refreshStatus, "Invalid refresh token")
		return
	}
	g, found := s.refreshTokens[input.RefreshToken]
	if !found {
		replyError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	access := g.access
	if access == "" {
		access = s.newID("access")
	}
	s.sessions[access] = g.userID

	data := map[string]string{"accessToken": access}
	if s.rotate {
		next := s.newID("refresh")
		delete(s.refreshTokens, input.RefreshToken)
		s.refreshTokens[next] = grant{userID: g.userID}
		data["refreshToken"] = next
	}
	reply(w, r, http.StatusOK, data)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.Revoke(token)
	render.JSON(w, r, map[string]any{"success": true, "message": "Logged out"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	reply(w, r, http.StatusOK, s.currentUser(r))
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	reply(w, r, http.StatusOK, s.currentUser(r))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if err := render.DecodeJSON(r.Body, &update); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	current := s.currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID != current.ID {
			continue
		}
		if update.Name != "" {
			s.users[i].Name = update.Name
		}
		if update.Bio != "" {
			s.users[i].Bio = update.Bio
		}
		if update.Skills != nil {
			s.users[i].Skills = update.Skills
		}
		if update.PortfolioLinks != nil {
			s.users[i].PortfolioLinks = update.PortfolioLinks
		}
		if update.ProfileVisibility != "" {
			s.users[i].ProfileVisibility = update.ProfileVisibility
		}
		reply(w, r, http.StatusOK, s.users[i])
		return
	}
	replyError(w, r, http.StatusNotFound, "User not found")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if s.currentUser(r).Role != domain.RoleAdmin {
		replyError(w, r, http.StatusForbidden, "Admin access required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	reply(w, r, http.StatusOK, append([]domain.User(nil), s.users...))
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := strings.ToLower(query.Get("search"))
	status := query.Get("status")
	minBudget, _ := strconv.ParseFloat(query.Get("minBudget"), 64)
	maxBudget, _ := strconv.ParseFloat(query.Get("maxBudget"), 64)
	page := atoiDefault(query.Get("page"), 1)
	limit := atoiDefault(query.Get("limit"), 10)

	s.mu.Lock()
	var matched []domain.Task
	for _, task := range s.tasks {
		if search != "" && !strings.Contains(strings.ToLower(task.Title+" "+task.Description), search) {
			continue
		}
		if status != "" && string(task.Status) != status {
			continue
		}
		if minBudget > 0 && task.Budget < minBudget {
			continue
		}
		if maxBudget > 0 && task.Budget > maxBudget {
			continue
		}
		matched = append(matched, task)
	}
	s.mu.Unlock()

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	totalPages := (total + limit - 1) / limit

	reply(w, r, http.StatusOK, domain.TaskPage{
		Tasks:      append([]domain.Task{}, matched[start:end]...),
		Pagination: domain.Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var input domain.TaskInput
	var attachments []string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			replyError(w, r, http.StatusBadRequest, "Invalid form data")
			return
		}
		input.Title = r.FormValue("title")
		input.Description = r.FormValue("description")
		input.Category = r.FormValue("category")
		input.Budget, _ = strconv.ParseFloat(r.FormValue("budget"), 64)
		input.Deadline = r.FormValue("deadline")
		for _, header := range r.MultipartForm.File["attachments"] {
			attachments = append(attachments, header.Filename)
		}
	} else if err := render.DecodeJSON(r.Body, &input); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(input.Title) == "" {
		replyError(w, r, http.StatusBadRequest, "Title is required")
		return
	}
	deadline, err := time.Parse(time.RFC3339, input.Deadline)
	if err != nil {
		deadline, _ = time.Parse(time.DateOnly, input.Deadline)
	}
	client := s.currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	task := domain.Task{
		ID:          s.newID("t"),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Budget:      input.Budget,
		Deadline:    deadline,
		Status:      domain.TaskStatusOpen,
		ClientID:    client.ID,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	}
	s.tasks = append(s.tasks, task)
	reply(w, r, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.ID == id {
			task.Bids = s.bidsFor(id)
			reply(w, r, http.StatusOK, task)
			return
		}
	}
	replyError(w, r, http.StatusNotFound, "Task not found")
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input domain.TaskInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if input.Title != "" {
			s.tasks[i].Title = input.Title
		}
		if input.Description != "" {
			s.tasks[i].Description = input.Description
		}
		if input.Budget > 0 {
			s.tasks[i].Budget = input.Budget
		}
		if input.Status != "" {
			s.tasks[i].Status = input.Status
		}
		reply(w, r, http.StatusOK, s.tasks[i])
		return
	}
	replyError(w, r, http.StatusNotFound, "Task not found")
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			render.JSON(w, r, map[string]any{"success": true, "message": "Task deleted"})
			return
		}
	}
	replyError(w, r, http.StatusNotFound, "Task not found")
}

func (s *Server) myTasks(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := []domain.Task{}
	for _, task := range s.tasks {
		if task.ClientID == user.ID || task.FreelancerID == user.ID {
			tasks = append(tasks, task)
		}
	}
	reply(w, r, http.StatusOK, tasks)
}

func (s *Server) taskBids(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	s.mu.Lock()
	defer s.mu.Unlock()
	reply(w, r, http.StatusOK, s.bidsFor(taskID))
}

func (s *Server) submitBid(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")
	var input domain.BidInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		replyError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	freelancer := s.currentUser(r)
	if freelancer.Role != domain.RoleFreelancer {
		replyError(w, r, http.StatusForbidden, "Only freelancers can bid")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bid := domain.Bid{
		ID:           s.newID("b"),
		TaskID:       taskID,
		FreelancerID: freelancer.ID,
		Proposal:     input.Proposal,
		Amount:       input.Amount,
		Timeline:     input.Timeline,
		Status:       "PENDING",
		Freelancer:   &freelancer,
		CreatedAt:    time.Now().UTC(),
	}
	s.bids = append(s.bids, bid)
	reply(w, r, http.StatusCreated, bid)
}

func (s *Server) acceptBid(w http.ResponseWriter, r *http.Request) {
	bidID := chi.URLParam(r, "bidId")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bids {
		if s.bids[i].ID != bidID {
			continue
		}
		s.bids[i].Status = "ACCEPTED"
		for j := range s.tasks {
			if s.tasks[j].ID == s.bids[i].TaskID {
				s.tasks[j].Status = domain.TaskStatusInProgress
				s.tasks[j].FreelancerID = s.bids[i].FreelancerID
			}
		}
		reply(w, r, http.StatusOK, s.bids[i])
		return
	}
	replyError(w, r, http.StatusNotFound, "Bid not found")
}

func (s *Server) myBids(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	bids := []domain.Bid{}
	for _, bid := range s.bids {
		if bid.FreelancerID == user.ID {
			bids = append(bids, bid)
		}
	}
	reply(w, r, http.StatusOK, bids)
}

func (s *Server) taskMessages(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	s.mu.Lock()
	defer s.mu.Unlock()
	messages := []domain.Message{}
	for _, message := range s.messages {
		if message.TaskID == taskID {
			messages = append(messages, message)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	reply(w, r, http.StatusOK, messages)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")
	var input struct {
		Content string `json:"content"`
	}
	if err := render.DecodeJSON(r.Body, &input); err != nil || strings.TrimSpace(input.Content) == "" {
		replyError(w, r, http.StatusBadRequest, "Message content is required")
		return
	}
	sender := s.currentUser(r)

	message := s.storeMessage(taskID, sender, input.Content)
	s.socket.broadcast(taskID, message)
	reply(w, r, http.StatusCreated, message)
}

func (s *Server) storeMessage(taskID string, sender domain.User, content string) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := domain.Message{
		ID:        s.newID("m"),
		TaskID:    taskID,
		SenderID:  sender.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Sender:    &domain.User{ID: sender.ID, Name: sender.Name, Role: sender.Role},
	}
	s.messages = append(s.messages, message)
	return message
}

func (s *Server) readMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].ReadAt = &now
			reply(w, r, http.StatusOK, s.messages[i])
			return
		}
	}
	replyError(w, r, http.StatusNotFound, "Message not found")
}

func (s *Server) createIntent(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TaskID      string `json:"taskId"`
		MilestoneID string `json:"milestoneId"`
	}
	if err := render.DecodeJSON(r.Body, &input); err != nil || input.TaskID == "" {
		replyError(w, r, http.StatusBadRequest, "taskId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	amount := 0.0
	for _, task := range s.tasks {
		if task.ID == input.TaskID {
			amount = task.Budget
		}
	}
	payment := domain.Payment{
		ID:          s.newID("p"),
		TaskID:      input.TaskID,
		MilestoneID: input.MilestoneID,
		Amount:      amount,
		Status:      domain.PaymentStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.payments = append(s.payments, payment)
	reply(w, r, http.StatusOK, domain.PaymentIntent{ClientSecret: "pi_secret_" + payment.ID, PaymentID: payment.ID, Amount: amount})
}

func (s *Server) paymentHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply(w, r, http.StatusOK, append([]domain.Payment{}, s.payments...))
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	limit := atoiDefault(r.URL.Query().Get("limit"), 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.notifications)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	reply(w, r, http.StatusOK, domain.NotificationPage{
		Notifications: append([]domain.Notification{}, s.notifications[start:end]...),
		Pagination:    domain.Pagination{Page: page, Limit: limit, Total: total, TotalPages: (total + limit - 1) / limit},
	})
}

func (s *Server) readNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].ReadAt = &now
			reply(w, r, http.StatusOK, s.notifications[i])
			return
		}
	}
	replyError(w, r, http.StatusNotFound, "Notification not found")
}

func (s *Server) readAllNotifications(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ReadAt == nil {
			s.notifications[i].ReadAt = &now
		}
	}
	render.JSON(w, r, map[string]any{"success": true, "message": "All notifications marked as read"})
}

func (s *Server) bidsFor(taskID string) []domain.Bid {
	bids := []domain.Bid{}
	for _, bid := range s.bids {
		if bid.TaskID == taskID {
			bids = append(bids, bid)
		}
	}
	return bids
}

func atoiDefault(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
