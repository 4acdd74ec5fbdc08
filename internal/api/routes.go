package api

// registerRoutes sets up the full route table. Everything under /api
// requires a bearer token except the public validation link and the
// Slack OAuth callback, which Slack's redirect hits unauthenticated.
func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.POST("/public/validations/:id", s.handleSubmitExternalValidation)
	api.GET("/slack/callback", s.handleSlackCallback)

	auth := api.Group("", s.requireAuth())
	auth.GET("/me", s.handleMe)

	auth.POST("/workspaces", s.handleCreateWorkspace)
	auth.GET("/workspaces", s.handleListWorkspaces)
	auth.POST("/invites/redeem", s.handleRedeemInvite)

	ws := auth.Group("/workspaces/:id")
	ws.GET("", s.handleGetWorkspace)
	ws.PATCH("", s.handleUpdateWorkspace)
	ws.POST("/invites", s.handleCreateInvite)

	ws.GET("/milestones", s.handleListMilestones)
	ws.POST("/milestones", s.handleCreateMilestone)
	auth.PATCH("/milestones/:milestoneID", s.handleUpdateMilestone)

	ws.GET("/tasks", s.handleListTasks)
	ws.POST("/tasks", s.handleCreateTask)
	auth.PATCH("/tasks/:taskID", s.handleUpdateTask)
	auth.PATCH("/tasks/:taskID/status", s.handleUpdateTaskStatus)

	ws.GET("/sprints", s.handleListSprints)
	ws.POST("/sprints", s.handleCreateSprint)
	auth.GET("/sprints/:sprintID", s.handleGetSprint)
	auth.POST("/sprints/:sprintID/lock", s.handleLockSprint)
	auth.POST("/sprints/:sprintID/close", s.handleCloseSprint)
	auth.DELETE("/sprints/:sprintID", s.handleDeleteSprint)

	ws.GET("/validations", s.handleListValidations)
	ws.POST("/validations", s.handleLogValidation)

	ws.GET("/ledger", s.handleListLedger)
	ws.GET("/ledger/verify", s.handleVerifyLedger)

	ws.POST("/funding/rounds", s.handleCreateRound)
	ws.GET("/funding/rounds", s.handleListRounds)
	ws.PUT("/funding/rounds/:roundID/allocations", s.handleSetAllocation)
	ws.POST("/funding/spend", s.handleLogSpend)
	ws.GET("/funding/spend", s.handleListSpend)
	ws.GET("/funding/summary", s.handleFundingSummary)
	ws.GET("/funding/audit", s.handleAuditLog)

	ws.GET("/insights/execution", s.handleExecutionInsights)
	ws.GET("/insights/validation", s.handleValidationInsights)
	ws.GET("/insights/investor", s.handleInvestorSummary)

	ws.GET("/digest/preview", s.handleDigestPreview)

	ws.GET("/slack/authorize", s.handleSlackAuthorize)
	ws.GET("/slack", s.handleGetIntegration)
	ws.DELETE("/slack", s.handleSlackDisconnect)
	auth.POST("/slack/complete", s.handleSlackComplete)

	auth.POST("/pitch/extract", s.handleExtractPitch)
}
