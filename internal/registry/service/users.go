package service

import (
	"context"

	"voto/internal/audit"
	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
)

// AddUser inserts a user. Fails with CodeAlreadyExists if the id is taken.
func (s *Service) AddUser(ctx context.Context, user models.User) (err error) {
	ctx, span := s.start(ctx, opAddUser, user.ID)
	defer func() { s.finish(ctx, span, opAddUser, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return err
	}
	if users.Has(user.ID) {
		return dErrors.New(dErrors.CodeAlreadyExists, "user already exists")
	}
	users[user.ID] = user.Fields()
	if err := s.save(ctx, storage.CollectionUsers, users); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionUserCreated, storage.CollectionUsers, user.ID)
	return nil
}

// GetUser returns the stored user. Absence is reported through found, not as
// an error.
func (s *Service) GetUser(ctx context.Context, id string) (user models.User, found bool, err error) {
	ctx, span := s.start(ctx, opGetUser, id)
	defer func() { s.finish(ctx, span, opGetUser, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return models.User{}, false, err
	}
	fields, ok := users[id]
	if !ok {
		return models.User{}, false, nil
	}
	user, err = models.UserFromFields(id, fields)
	if err != nil {
		return models.User{}, false, corrupt(err)
	}
	return user, true, nil
}

// UpdateUser replaces all five fields. Fails with CodeNotFound if absent.
func (s *Service) UpdateUser(ctx context.Context, user models.User) (err error) {
	ctx, span := s.start(ctx, opUpdateUser, user.ID)
	defer func() { s.finish(ctx, span, opUpdateUser, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return err
	}
	if !users.Has(user.ID) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	users[user.ID] = user.Fields()
	if err := s.save(ctx, storage.CollectionUsers, users); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionUserUpdated, storage.CollectionUsers, user.ID)
	return nil
}

// DeleteUser removes a user. Candidates, votes and admins that reference it
// are left in place.
func (s *Service) DeleteUser(ctx context.Context, id string) (err error) {
	ctx, span := s.start(ctx, opDeleteUser, id)
	defer func() { s.finish(ctx, span, opDeleteUser, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return err
	}
	if !users.Has(id) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	delete(users, id)
	if err := s.save(ctx, storage.CollectionUsers, users); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionUserDeleted, storage.CollectionUsers, id)
	return nil
}

func (s *Service) ListUsers(ctx context.Context) (out map[string]models.User, err error) {
	ctx, span := s.start(ctx, opListUsers, "")
	defer func() { s.finish(ctx, span, opListUsers, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return nil, err
	}
	out = make(map[string]models.User, len(users))
	for id, fields := range users {
		user, err := models.UserFromFields(id, fields)
		if err != nil {
			return nil, corrupt(err)
		}
		out[id] = user
	}
	return out, nil
}
