package services

import (
	"testing"
	"time"

	"traveldesk/internal/models"
	"traveldesk/internal/testutil"

	"gorm.io/gorm"
)

// fakeNotifier records status notifications for assertions.
type fakeNotifier struct {
	statusCalls int
	lastUser    *models.User
	lastOld     models.TravelRequestStatus
}

func (f *fakeNotifier) NotifyStatusChanged(user *models.User, request *models.TravelRequest, oldStatus models.TravelRequestStatus) {
	f.statusCalls++
	f.lastUser = user
	f.lastOld = oldStatus
}

func (f *fakeNotifier) SendPasswordReset(user *models.User, token string) {}

func actorFor(user *models.User) Actor {
	return Actor{User: user, IPAddress: "127.0.0.1", UserAgent: "go-test"}
}

func newTravelRequestTestService(db *gorm.DB) (TravelRequestServicer, *fakeNotifier) {
	notifier := &fakeNotifier{}
	return NewTravelRequestService(db, NewActivityService(db), notifier), notifier
}

func validInput() TravelRequestInput {
	departure := time.Now().AddDate(0, 0, 14)
	return TravelRequestInput{
		RequesterName: "Ana Souza",
		Destination:   "Recife - Pernambuco - PE",
		DepartureDate: departure,
		ReturnDate:    departure.AddDate(0, 0, 5),
		Notes:         "Conference trip",
	}
}

func TestCreateTravelRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)

		tr, err := svc.Create(actorFor(user), validInput())
		testutil.AssertNoError(t, err)

		if tr.ID == 0 {
			t.Fatal("expected non-zero travel request ID")
		}
		if tr.Status != models.StatusRequested {
			t.Errorf("expected status requested, got %s", tr.Status)
		}
		if tr.UserID != user.ID {
			t.Errorf("expected owner %d, got %d", user.ID, tr.UserID)
		}
		if tr.ApprovedBy != nil || tr.ApprovedAt != nil {
			t.Error("expected no approver on a new request")
		}
	})

	t.Run("departure_in_past", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)

		input := validInput()
		input.DepartureDate = time.Now().AddDate(0, 0, -2)
		_, err := svc.Create(actorFor(user), input)
		testutil.AssertAppError(t, err, "DEPARTURE_IN_PAST")
	})

	t.Run("return_before_departure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)

		input := validInput()
		input.ReturnDate = input.DepartureDate.AddDate(0, 0, -1)
		_, err := svc.Create(actorFor(user), input)
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("writes_audit_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)

		tr, err := svc.Create(actorFor(user), validInput())
		testutil.AssertNoError(t, err)

		var log models.ActivityLog
		err = db.Where("model_type = ? AND model_id = ?", models.ModelTypeTravelRequest, tr.ID).First(&log).Error
		testutil.AssertNoError(t, err)
		if log.Action != models.ActionCreate {
			t.Errorf("expected create action, got %s", log.Action)
		}
		if log.UserID != user.ID {
			t.Errorf("expected audit actor %d, got %d", user.ID, log.UserID)
		}
		if log.IPAddress != "127.0.0.1" {
			t.Errorf("expected audit IP 127.0.0.1, got %s", log.IPAddress)
		}
	})
}

func TestGetTravelRequest(t *testing.T) {
	t.Run("owner_can_view", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		got, err := svc.Get(actorFor(user), tr.ID)
		testutil.AssertNoError(t, err)
		if got.ID != tr.ID {
			t.Errorf("expected request %d, got %d", tr.ID, got.ID)
		}
	})

	t.Run("admin_can_view_any", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		_, err := svc.Get(actorFor(admin), tr.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, owner.ID)

		_, err := svc.Get(actorFor(other), tr.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Get(actorFor(user), 9999)
		testutil.AssertAppError(t, err, "TRAVEL_REQUEST_NOT_FOUND")
	})
}

func TestListTravelRequests(t *testing.T) {
	t.Run("user_sees_own_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		testutil.CreateTestTravelRequest(t, db, user1.ID)
		testutil.CreateTestTravelRequest(t, db, user1.ID)
		testutil.CreateTestTravelRequest(t, db, user2.ID)

		list, err := svc.List(actorFor(user1), TravelRequestFilter{})
		testutil.AssertNoError(t, err)
		if len(list) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(list))
		}
		for _, tr := range list {
			if tr.UserID != user1.ID {
				t.Errorf("expected only own requests, got one owned by %d", tr.UserID)
			}
		}
	})

	t.Run("admin_sees_all", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		testutil.CreateTestTravelRequest(t, db, user.ID)
		testutil.CreateTestTravelRequest(t, db, admin.ID)

		list, err := svc.List(actorFor(admin), TravelRequestFilter{})
		testutil.AssertNoError(t, err)
		if len(list) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(list))
		}
	})

	t.Run("filter_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTravelRequest(t, db, user.ID)
		testutil.CreateTestTravelRequestWithStatus(t, db, user.ID, models.StatusCancelled)

		list, err := svc.List(actorFor(user), TravelRequestFilter{Status: "cancelled"})
		testutil.AssertNoError(t, err)
		if len(list) != 1 {
			t.Fatalf("expected 1 request, got %d", len(list))
		}
		if list[0].Status != models.StatusCancelled {
			t.Errorf("expected cancelled, got %s", list[0].Status)
		}
	})

	t.Run("filter_by_destination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)
		testutil.CreateTestTravelRequest(t, db, user.ID)

		list, err := svc.List(actorFor(user), TravelRequestFilter{Destination: tr.Destination})
		testutil.AssertNoError(t, err)
		if len(list) != 1 {
			t.Fatalf("expected 1 request, got %d", len(list))
		}
		if list[0].ID != tr.ID {
			t.Errorf("expected request %d, got %d", tr.ID, list[0].ID)
		}
	})
}

func TestUpdateTravelRequest(t *testing.T) {
	t.Run("owner_updates_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		destination := "Salvador - Bahia - BA"
		got, err := svc.Update(actorFor(user), tr.ID, TravelRequestUpdate{Destination: &destination})
		testutil.AssertNoError(t, err)
		if got.Destination != destination {
			t.Errorf("expected destination %q, got %q", destination, got.Destination)
		}
	})

	t.Run("approved_is_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequestWithStatus(t, db, user.ID, models.StatusApproved)

		destination := "Curitiba - Paraná - PR"
		_, err := svc.Update(actorFor(user), tr.ID, TravelRequestUpdate{Destination: &destination})
		testutil.AssertAppError(t, err, "REQUEST_APPROVED")
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, owner.ID)

		destination := "Manaus - Amazonas - AM"
		_, err := svc.Update(actorFor(other), tr.ID, TravelRequestUpdate{Destination: &destination})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("merged_dates_validated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		// Moving departure past the stored return date must fail.
		departure := tr.ReturnDate.AddDate(0, 0, 2)
		_, err := svc.Update(actorFor(user), tr.ID, TravelRequestUpdate{DepartureDate: &departure})
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("writes_audit_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		notes := "Updated notes"
		_, err := svc.Update(actorFor(user), tr.ID, TravelRequestUpdate{Notes: &notes})
		testutil.AssertNoError(t, err)

		var log models.ActivityLog
		err = db.Where("model_id = ? AND action = ?", tr.ID, models.ActionUpdate).First(&log).Error
		testutil.AssertNoError(t, err)
		if log.OldValues == "" || log.NewValues == "" {
			t.Error("expected before and after snapshots on update")
		}
	})
}

func TestUpdateTravelRequestStatus(t *testing.T) {
	t.Run("non_admin_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, owner.ID)

		_, err := svc.UpdateStatus(actorFor(other), tr.ID, models.StatusApproved)
		testutil.AssertAppError(t, err, "ADMIN_ONLY")
	})

	t.Run("invalid_status_value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		_, err := svc.UpdateStatus(actorFor(admin), tr.ID, models.StatusRejected)
		testutil.AssertAppError(t, err, "INVALID_STATUS")
	})

	t.Run("admin_cannot_change_own_request", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, admin.ID)

		_, err := svc.UpdateStatus(actorFor(admin), tr.ID, models.StatusApproved)
		testutil.AssertAppError(t, err, "SELF_APPROVAL")
	})

	t.Run("approve_sets_approver_and_notifies", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, notifier := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		got, err := svc.UpdateStatus(actorFor(admin), tr.ID, models.StatusApproved)
		testutil.AssertNoError(t, err)

		if got.Status != models.StatusApproved {
			t.Errorf("expected approved, got %s", got.Status)
		}
		if got.ApprovedBy == nil || *got.ApprovedBy != admin.ID {
			t.Error("expected approver to be the acting admin")
		}
		if got.ApprovedAt == nil {
			t.Error("expected approval timestamp to be set")
		}
		if notifier.statusCalls != 1 {
			t.Errorf("expected 1 notification, got %d", notifier.statusCalls)
		}
		if notifier.lastUser == nil || notifier.lastUser.ID != user.ID {
			t.Error("expected the request owner to be notified")
		}
		if notifier.lastOld != models.StatusRequested {
			t.Errorf("expected old status requested, got %s", notifier.lastOld)
		}
	})

	t.Run("cancel_via_status_sets_approver", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		got, err := svc.UpdateStatus(actorFor(admin), tr.ID, models.StatusCancelled)
		testutil.AssertNoError(t, err)
		if got.Status != models.StatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
		if got.ApprovedBy == nil || *got.ApprovedBy != admin.ID {
			t.Error("expected the deciding admin to be recorded")
		}
	})

	t.Run("writes_status_change_audit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		_, err := svc.UpdateStatus(actorFor(admin), tr.ID, models.StatusApproved)
		testutil.AssertNoError(t, err)

		var log models.ActivityLog
		err = db.Where("model_id = ? AND action = ?", tr.ID, models.ActionStatusChange).First(&log).Error
		testutil.AssertNoError(t, err)
		if log.UserID != admin.ID {
			t.Errorf("expected audit actor %d, got %d", admin.ID, log.UserID)
		}
	})
}

func TestCancelTravelRequest(t *testing.T) {
	t.Run("owner_cancels_requested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		got, err := svc.Cancel(actorFor(user), tr.ID)
		testutil.AssertNoError(t, err)
		if got.Status != models.StatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
		if got.ApprovedBy != nil || got.ApprovedAt != nil {
			t.Error("expected owner cancellation to leave approver fields empty")
		}
	})

	t.Run("approved_cannot_be_cancelled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequestWithStatus(t, db, user.ID, models.StatusApproved)

		_, err := svc.Cancel(actorFor(user), tr.ID)
		testutil.AssertAppError(t, err, "REQUEST_APPROVED")
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, owner.ID)

		_, err := svc.Cancel(actorFor(other), tr.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteTravelRequest(t *testing.T) {
	t.Run("non_admin_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		err := svc.Delete(actorFor(user), tr.ID)
		testutil.AssertAppError(t, err, "ADMIN_ONLY")
	})

	t.Run("admin_deletes_requested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequest(t, db, user.ID)

		err := svc.Delete(actorFor(admin), tr.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.Get(actorFor(admin), tr.ID)
		testutil.AssertAppError(t, err, "TRAVEL_REQUEST_NOT_FOUND")

		// Soft delete keeps the row for the audit trail.
		var count int64
		if err := db.Unscoped().Model(&models.TravelRequest{}).Where("id = ?", tr.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count unscoped rows: %v", err)
		}
		if count != 1 {
			t.Errorf("expected soft-deleted row to remain, got %d rows", count)
		}
	})

	t.Run("approved_cannot_be_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTravelRequestTestService(db)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		tr := testutil.CreateTestTravelRequestWithStatus(t, db, user.ID, models.StatusApproved)

		err := svc.Delete(actorFor(admin), tr.ID)
		testutil.AssertAppError(t, err, "REQUEST_APPROVED")
	})
}

func TestTravelRequestsSurviveOwnerDeletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc, _ := newTravelRequestTestService(db)
	admin := testutil.CreateTestAdmin(t, db)
	user := testutil.CreateTestUser(t, db)
	tr := testutil.CreateTestTravelRequest(t, db, user.ID)

	userSvc := NewUserService(db, NewActivityService(db))
	testutil.AssertNoError(t, userSvc.DeleteUser(actorFor(admin), user.ID))

	got, err := svc.Get(actorFor(admin), tr.ID)
	testutil.AssertNoError(t, err)
	if got.UserID != user.ID {
		t.Errorf("expected request to keep its owner reference, got %d", got.UserID)
	}
}
