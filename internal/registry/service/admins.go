package service

import (
	"context"
	"crypto/subtle"

	"voto/internal/audit"
	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
)

// AddAdmin registers an administrator for an existing user. The survey id is
// stored as given.
func (s *Service) AddAdmin(ctx context.Context, admin models.Admin) (err error) {
	ctx, span := s.start(ctx, opAddAdmin, admin.ID)
	defer func() { s.finish(ctx, span, opAddAdmin, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return err
	}
	if !users.Has(admin.UserID) {
		return dErrors.New(dErrors.CodeInvalidReference, "user does not exist")
	}
	admins, err := s.load(ctx, storage.CollectionAdmins)
	if err != nil {
		return err
	}
	if admins.Has(admin.ID) {
		return dErrors.New(dErrors.CodeAlreadyExists, "admin already exists")
	}
	admins[admin.ID] = admin.Fields()
	if err := s.save(ctx, storage.CollectionAdmins, admins); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionAdminCreated, storage.CollectionAdmins, admin.ID,
		"user_id", admin.UserID,
		"survey_id", admin.SurveyID)
	return nil
}

// AuthenticateAdmin reports whether id exists and rfc equals its stored RFC
// exactly.
func (s *Service) AuthenticateAdmin(ctx context.Context, id, rfc string) (ok bool, err error) {
	ctx, span := s.start(ctx, opAuthenticateAdmin, id)
	defer func() { s.finish(ctx, span, opAuthenticateAdmin, err) }()

	return s.authenticate(ctx, storage.CollectionAdmins, models.RoleAdmin, id, rfc,
		func(fields []string) (string, error) {
			admin, err := models.AdminFromFields(id, fields)
			return admin.RFC, err
		})
}

func (s *Service) authenticate(ctx context.Context, collection, role, id, rfc string, storedRFC func([]string) (string, error)) (bool, error) {
	records, err := s.load(ctx, collection)
	if err != nil {
		return false, err
	}
	ok := false
	reason := "unknown_subject"
	if fields, exists := records[id]; exists {
		want, err := storedRFC(fields)
		if err != nil {
			return false, corrupt(err)
		}
		ok = subtle.ConstantTimeCompare([]byte(want), []byte(rfc)) == 1
		reason = "rfc_mismatch"
	}

	if s.metrics != nil {
		s.metrics.IncrementAuthentication(role, ok)
	}
	if ok {
		s.logAudit(ctx, audit.ActionAuthSucceeded, collection, id, "role", role)
	} else {
		s.logAudit(ctx, audit.ActionAuthFailed, collection, id, "role", role, "reason", reason)
	}
	return ok, nil
}

func (s *Service) GetAdmin(ctx context.Context, id string) (admin models.Admin, found bool, err error) {
	ctx, span := s.start(ctx, opGetAdmin, id)
	defer func() { s.finish(ctx, span, opGetAdmin, err) }()

	admins, err := s.load(ctx, storage.CollectionAdmins)
	if err != nil {
		return models.Admin{}, false, err
	}
	fields, ok := admins[id]
	if !ok {
		return models.Admin{}, false, nil
	}
	admin, err = models.AdminFromFields(id, fields)
	if err != nil {
		return models.Admin{}, false, corrupt(err)
	}
	return admin, true, nil
}

func (s *Service) ListAdmins(ctx context.Context) (out map[string]models.Admin, err error) {
	ctx, span := s.start(ctx, opListAdmins, "")
	defer func() { s.finish(ctx, span, opListAdmins, err) }()

	admins, err := s.load(ctx, storage.CollectionAdmins)
	if err != nil {
		return nil, err
	}
	out = make(map[string]models.Admin, len(admins))
	for id, fields := range admins {
		admin, err := models.AdminFromFields(id, fields)
		if err != nil {
			return nil, corrupt(err)
		}
		out[id] = admin
	}
	return out, nil
}
