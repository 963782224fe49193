package routes

import (
	"net/http"
	"testing"

	"gatherings-server/models"
)

func TestCreateAndGetGroup(t *testing.T) {
	app := buildTestApp(t)
	creator := createTestUser(t, "creator@example.com", false)
	outsider := createTestUser(t, "outsider@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/groups", map[string]interface{}{
		"name":        "Hikers",
		"description": "weekend hikes",
	}, creator)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var group models.Group
	decodeBody(t, resp, &group)

	// Creator sees the roster and their admin role.
	resp2 := doRequest(t, app, http.MethodGet, "/api/groups/"+itoa(group.ID), nil, creator)
	if resp2.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp2.Code)
	}
	var detail struct {
		Members  []map[string]interface{} `json:"members"`
		UserRole *models.GroupRole        `json:"userRole"`
	}
	decodeBody(t, resp2, &detail)
	if len(detail.Members) != 1 {
		t.Errorf("roster size = %d, want just the creator", len(detail.Members))
	}
	if detail.UserRole == nil || detail.UserRole.Name != models.RoleAdmin {
		t.Errorf("creator role = %+v, want admin", detail.UserRole)
	}

	// Private group is invisible to outsiders.
	resp3 := doRequest(t, app, http.MethodGet, "/api/groups/"+itoa(group.ID), nil, outsider)
	if resp3.Code != http.StatusForbidden {
		t.Errorf("outsider get: expected 403, got %d", resp3.Code)
	}
}

func TestPublicLinkJoinAndApproveFlow(t *testing.T) {
	app := buildTestApp(t)
	creator := createTestUser(t, "creator@example.com", false)
	joiner := createTestUser(t, "joiner@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/groups", map[string]interface{}{
		"name":       "Open Hikers",
		"publicLink": true,
	}, creator)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.Code)
	}
	var group models.Group
	decodeBody(t, resp, &group)
	if group.LinkUID == nil {
		t.Fatal("public group should carry a link uid")
	}
	uid := *group.LinkUID

	// Anyone can read the share page without a token.
	resp2 := doRequest(t, app, http.MethodGet, "/api/groups/public/"+uid, nil, nil)
	if resp2.Code != http.StatusOK {
		t.Fatalf("public view: expected 200, got %d", resp2.Code)
	}

	// Joining through the link requires a session and lands pending.
	resp3 := doRequest(t, app, http.MethodPost, "/api/groups/public/"+uid+"/join", nil, nil)
	if resp3.Code == http.StatusCreated {
		t.Fatal("anonymous join should be rejected")
	}
	resp4 := doRequest(t, app, http.MethodPost, "/api/groups/public/"+uid+"/join", nil, joiner)
	if resp4.Code != http.StatusCreated {
		t.Fatalf("link join: expected 201, got %d: %s", resp4.Code, resp4.Body.String())
	}
	var joined struct {
		Member models.GroupMember `json:"member"`
	}
	decodeBody(t, resp4, &joined)
	if !joined.Member.NeedAdminApprove {
		t.Error("link join should be pending approval")
	}

	// Pending members cannot schedule events.
	resp5 := doJSON(t, app, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/events", map[string]interface{}{
		"title":         "Sunrise hike",
		"startDatetime": "2026-10-01T06:00:00Z",
		"endDatetime":   "2026-10-01T12:00:00Z",
	}, joiner)
	if resp5.Code != http.StatusForbidden {
		t.Errorf("pending member event create: expected 403, got %d", resp5.Code)
	}

	// Joiner cannot approve themselves.
	approvePath := "/api/groups/" + itoa(group.ID) + "/members/" + itoa(joiner.ID) + "/approve"
	resp6 := doRequest(t, app, http.MethodPost, approvePath, nil, joiner)
	if resp6.Code != http.StatusForbidden {
		t.Errorf("self approve: expected 403, got %d", resp6.Code)
	}

	resp7 := doRequest(t, app, http.MethodPost, approvePath, nil, creator)
	if resp7.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", resp7.Code, resp7.Body.String())
	}

	// Approved members schedule freely.
	resp8 := doJSON(t, app, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/events", map[string]interface{}{
		"title":         "Sunrise hike",
		"startDatetime": "2026-10-01T06:00:00Z",
		"endDatetime":   "2026-10-01T12:00:00Z",
	}, joiner)
	if resp8.Code != http.StatusCreated {
		t.Errorf("approved member event create: expected 201, got %d: %s", resp8.Code, resp8.Body.String())
	}
}

func TestPublicEventLinkLifecycle(t *testing.T) {
	app := buildTestApp(t)
	creator := createTestUser(t, "creator@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/groups", map[string]interface{}{"name": "Hikers"}, creator)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create group: %d", resp.Code)
	}
	var group models.Group
	decodeBody(t, resp, &group)

	eventPayload := map[string]interface{}{
		"title":         "Night hike",
		"startDatetime": "2026-10-02T20:00:00Z",
		"endDatetime":   "2026-10-03T01:00:00Z",
	}
	resp2 := doJSON(t, app, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/events", eventPayload, creator)
	if resp2.Code != http.StatusCreated {
		t.Fatalf("create event: %d: %s", resp2.Code, resp2.Body.String())
	}
	var event models.Event
	decodeBody(t, resp2, &event)
	if event.LinkUID != nil {
		t.Fatal("private event should have no link uid")
	}

	// Enable sharing; a link uid is minted.
	eventPayload["publicLink"] = true
	resp3 := doJSON(t, app, http.MethodPut, "/api/events/"+itoa(event.ID), eventPayload, creator)
	if resp3.Code != http.StatusOK {
		t.Fatalf("enable sharing: %d: %s", resp3.Code, resp3.Body.String())
	}
	var shared models.Event
	decodeBody(t, resp3, &shared)
	if shared.LinkUID == nil {
		t.Fatal("shared event should carry a link uid")
	}
	uid := *shared.LinkUID

	resp4 := doRequest(t, app, http.MethodGet, "/api/events/public/"+uid, nil, nil)
	if resp4.Code != http.StatusOK {
		t.Fatalf("public event view: expected 200, got %d", resp4.Code)
	}

	// Disable sharing; the old link stops resolving.
	eventPayload["publicLink"] = false
	resp5 := doJSON(t, app, http.MethodPut, "/api/events/"+itoa(event.ID), eventPayload, creator)
	if resp5.Code != http.StatusOK {
		t.Fatalf("disable sharing: %d", resp5.Code)
	}
	resp6 := doRequest(t, app, http.MethodGet, "/api/events/public/"+uid, nil, nil)
	if resp6.Code != http.StatusNotFound {
		t.Errorf("revoked link: expected 404, got %d", resp6.Code)
	}
}

func TestInvitationFlowOverHTTP(t *testing.T) {
	app := buildTestApp(t)
	creator := createTestUser(t, "creator@example.com", false)
	guest := createTestUser(t, "guest@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/groups", map[string]interface{}{"name": "Hikers"}, creator)
	var group models.Group
	decodeBody(t, resp, &group)

	resp2 := doJSON(t, app, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/invitations", map[string]interface{}{
		"invitedEmail": "guest@example.com",
		"description":  "join us",
	}, creator)
	if resp2.Code != http.StatusCreated {
		t.Fatalf("invite: expected 201, got %d: %s", resp2.Code, resp2.Body.String())
	}

	// Inviting again while pending conflicts.
	resp3 := doJSON(t, app, http.MethodPost, "/api/groups/"+itoa(group.ID)+"/invitations", map[string]interface{}{
		"invitedEmail": "guest@example.com",
	}, creator)
	if resp3.Code != http.StatusConflict {
		t.Errorf("duplicate invite: expected 409, got %d", resp3.Code)
	}

	// Guest sees the invitation in their inbox.
	resp4 := doRequest(t, app, http.MethodGet, "/api/invitations", nil, guest)
	if resp4.Code != http.StatusOK {
		t.Fatalf("inbox: expected 200, got %d", resp4.Code)
	}
	var inbox []models.Invitation
	decodeBody(t, resp4, &inbox)
	if len(inbox) != 1 {
		t.Fatalf("inbox size = %d, want 1", len(inbox))
	}

	resp5 := doJSON(t, app, http.MethodPost, "/api/invitations/"+itoa(inbox[0].ID)+"/respond",
		map[string]interface{}{"action": "accept"}, guest)
	if resp5.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", resp5.Code, resp5.Body.String())
	}

	// Accepted guest can now read the group.
	resp6 := doRequest(t, app, http.MethodGet, "/api/groups/"+itoa(group.ID), nil, guest)
	if resp6.Code != http.StatusOK {
		t.Errorf("member get group: expected 200, got %d", resp6.Code)
	}

	// And the invitation is terminal.
	resp7 := doJSON(t, app, http.MethodPost, "/api/invitations/"+itoa(inbox[0].ID)+"/respond",
		map[string]interface{}{"action": "decline"}, guest)
	if resp7.Code != http.StatusBadRequest {
		t.Errorf("second respond: expected 400, got %d", resp7.Code)
	}
}
