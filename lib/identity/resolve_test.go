// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestResolveGroupCreatesWhenAbsent(t *testing.T) {
	db := newMemoryDatabase()

	record, existed, err := ResolveGroup(context.Background(), db, 100, "appgroup")
	if err != nil {
		t.Fatalf("ResolveGroup() error: %v", err)
	}
	if existed {
		t.Error("ResolveGroup() reported alreadyExisted for a new group")
	}
	if record.Name != "appgroup" || record.ID != 100 {
		t.Errorf("ResolveGroup() = %+v, want appgroup(100)", record)
	}
	if db.groupCreates != 1 {
		t.Errorf("group creates = %d, want 1", db.groupCreates)
	}
}

func TestResolveGroupReusesExistingName(t *testing.T) {
	db := newMemoryDatabase()
	db.addGroup("users", 100)

	record, existed, err := ResolveGroup(context.Background(), db, 100, "appgroup")
	if err != nil {
		t.Fatalf("ResolveGroup() error: %v", err)
	}
	if !existed {
		t.Error("ResolveGroup() should report alreadyExisted")
	}
	if record.Name != "users" {
		t.Errorf("ResolveGroup() name = %q, want %q", record.Name, "users")
	}
	if db.groupCreates != 0 {
		t.Errorf("group creates = %d, want 0", db.groupCreates)
	}
}

func TestResolveGroupNameConflict(t *testing.T) {
	db := newMemoryDatabase()
	db.addGroup("appgroup", 2000)

	_, _, err := ResolveGroup(context.Background(), db, 100, "appgroup")
	if !errors.Is(err, ErrCreationConflict) {
		t.Fatalf("ResolveGroup() error = %v, want ErrCreationConflict", err)
	}
	if !strings.Contains(err.Error(), "held by id 2000") {
		t.Errorf("conflict error should name the holder, got %q", err)
	}
	if len(db.groups) != 1 {
		t.Errorf("conflict must not create a record, have %d groups", len(db.groups))
	}
}

func TestResolveGroupLookupFailure(t *testing.T) {
	db := newMemoryDatabase()
	db.lookupErr = errors.New("nss unavailable")

	_, _, err := ResolveGroup(context.Background(), db, 100, "appgroup")
	if err == nil || !strings.Contains(err.Error(), "nss unavailable") {
		t.Fatalf("ResolveGroup() error = %v, want lookup failure", err)
	}
	if db.groupCreates != 0 {
		t.Error("a failed lookup must not be treated as absence")
	}
}

func TestResolveGroupNotVisibleAfterCreate(t *testing.T) {
	db := newMemoryDatabase()
	db.dropCreates = true

	_, _, err := ResolveGroup(context.Background(), db, 100, "appgroup")
	if err == nil || !strings.Contains(err.Error(), "not visible after create") {
		t.Fatalf("ResolveGroup() error = %v, want not-visible error", err)
	}
}

func TestResolveUserCreatesWhenAbsent(t *testing.T) {
	db := newMemoryDatabase()
	db.addGroup("appgroup", 100)

	record, existed, err := ResolveUser(context.Background(), db, 99, "appuser", "appgroup", "/bin/sh")
	if err != nil {
		t.Fatalf("ResolveUser() error: %v", err)
	}
	if existed {
		t.Error("ResolveUser() reported alreadyExisted for a new user")
	}
	if record.Name != "appuser" || record.ID != 99 || record.PrimaryGroup != "appgroup" {
		t.Errorf("ResolveUser() = %+v, want appuser(99) in appgroup", record)
	}
	if db.users[0].shell != "/bin/sh" {
		t.Errorf("created shell = %q, want /bin/sh", db.users[0].shell)
	}
}

func TestResolveUserReusesExistingName(t *testing.T) {
	db := newMemoryDatabase()
	db.addGroup("staff", 50)
	db.addUser("bob", 99, 50)

	record, existed, err := ResolveUser(context.Background(), db, 99, "appuser", "appgroup", "/bin/sh")
	if err != nil {
		t.Fatalf("ResolveUser() error: %v", err)
	}
	if !existed {
		t.Error("ResolveUser() should report alreadyExisted")
	}
	if record.Name != "bob" {
		t.Errorf("ResolveUser() name = %q, want %q", record.Name, "bob")
	}
	if db.userCreates != 0 {
		t.Errorf("user creates = %d, want 0", db.userCreates)
	}
}

func TestResolveUserNameConflict(t *testing.T) {
	db := newMemoryDatabase()
	db.addGroup("appgroup", 100)
	db.addUser("appuser", 1000, 100)

	_, _, err := ResolveUser(context.Background(), db, 99, "appuser", "appgroup", "/bin/sh")
	if !errors.Is(err, ErrCreationConflict) {
		t.Fatalf("ResolveUser() error = %v, want ErrCreationConflict", err)
	}
	if !errors.Is(err, ErrNameTaken) {
		t.Error("conflict should keep the backend cause in the chain")
	}
	if len(db.users) != 1 {
		t.Errorf("conflict must not create a record, have %d users", len(db.users))
	}
}

func TestResolveUserOtherCreateFailure(t *testing.T) {
	db := newMemoryDatabase()
	db.createUserErr = errors.New("useradd: cannot lock /etc/passwd")

	_, _, err := ResolveUser(context.Background(), db, 99, "appuser", "appgroup", "/bin/sh")
	if err == nil {
		t.Fatal("ResolveUser() should fail")
	}
	if errors.Is(err, ErrCreationConflict) {
		t.Errorf("a lock failure is not a creation conflict: %v", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	db := newMemoryDatabase()
	ctx := context.Background()

	run := func() (Record, Record) {
		group, _, err := ResolveGroup(ctx, db, 100, "appgroup")
		if err != nil {
			t.Fatalf("ResolveGroup() error: %v", err)
		}
		user, _, err := ResolveUser(ctx, db, 99, "appuser", group.Name, "/bin/sh")
		if err != nil {
			t.Fatalf("ResolveUser() error: %v", err)
		}
		return group, user
	}

	firstGroup, firstUser := run()
	groupCreates, userCreates := db.groupCreates, db.userCreates
	secondGroup, secondUser := run()

	if firstGroup != secondGroup || firstUser != secondUser {
		t.Errorf("second run = %+v %+v, want %+v %+v", secondGroup, secondUser, firstGroup, firstUser)
	}
	if db.groupCreates != groupCreates || db.userCreates != userCreates {
		t.Error("second run should create no records")
	}
}
