package profile

import (
	"context"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var (
	profileID   = "1"
	address     = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	handle      = "pike"
	displayName = "Pike the Author"
)

func TestGetByAddress(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	defer db.Close()

	r := NewProfileRepo(db)

	t.Run("should return profile", func(t *testing.T) {
		expect := &Profile{Id: profileID, Address: address, Handle: handle, DisplayName: displayName}

		rows := sqlmock.NewRows([]string{"id", "address", "handle", "display_name"})
		rows.AddRow(expect.Id, expect.Address, expect.Handle, expect.DisplayName)

		mock.
			ExpectQuery("SELECT id, address, handle, display_name FROM profiles where address").
			WithArgs(address).
			WillReturnRows(rows)

		gotProfile, err := r.GetByAddress(context.TODO(), address)
		if err != nil {
			t.Errorf("unexpected err: %s", err)
			return
		}
		assert.Equal(t, expect, gotProfile)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should return DB error", func(t *testing.T) {
		expectedErr := fmt.Errorf("mock_db_error")
		mock.
			ExpectQuery("SELECT id, address, handle, display_name FROM profiles where address").
			WithArgs(address).
			WillReturnError(expectedErr)
		_, err = r.GetByAddress(context.TODO(), address)
		assert.ErrorIs(t, err, expectedErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})
}

func TestGetById(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	defer db.Close()

	r := NewProfileRepo(db)

	t.Run("should return profile", func(t *testing.T) {
		expect := &Profile{Id: profileID, Address: address, Handle: handle}

		rows := sqlmock.NewRows([]string{"id", "address", "handle"})
		rows.AddRow(expect.Id, expect.Address, expect.Handle)

		mock.
			ExpectQuery("SELECT id, address, handle FROM profiles where id").
			WithArgs(profileID).
			WillReturnRows(rows)

		gotProfile, err := r.GetById(context.TODO(), profileID)
		if err != nil {
			t.Errorf("unexpected err: %s", err)
			return
		}
		assert.Equal(t, expect, gotProfile)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should return DB error", func(t *testing.T) {
		expectedErr := fmt.Errorf("mock_db_error")
		mock.
			ExpectQuery("SELECT id, address, handle FROM profiles where id").
			WithArgs(profileID).
			WillReturnError(expectedErr)
		_, err = r.GetById(context.TODO(), profileID)
		assert.ErrorIs(t, err, expectedErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})
}

func TestRepoAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	defer db.Close()
	repo := NewProfileRepo(db)
	testProfile := &Profile{Address: address, Handle: handle, DisplayName: displayName}

	t.Run("should add new profile", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id"}).AddRow(profileID)
		mock.
			ExpectQuery("INSERT INTO profiles").
			WithArgs(address, handle, displayName).
			WillReturnRows(rows)

		addedId, err := repo.Add(testProfile)
		if err != nil {
			t.Errorf("unexpected error %s", err)
			return
		}
		assert.Equal(t, addedId, profileID)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should return query error", func(t *testing.T) {
		expectedErr := fmt.Errorf("bad query")
		mock.
			ExpectQuery("INSERT INTO profiles").
			WithArgs(address, handle, displayName).
			WillReturnError(expectedErr)
		_, err = repo.Add(testProfile)
		assert.ErrorIs(t, err, expectedErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})
}

func TestProfileExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	defer db.Close()
	r := NewProfileRepo(db)

	t.Run("should return true", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id"}).AddRow(profileID)
		mock.
			ExpectQuery("SELECT id FROM profiles where").
			WithArgs(address).
			WillReturnRows(rows)
		exists := r.Exists(address)
		assert.Equal(t, exists, true)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should return false", func(t *testing.T) {
		mock.
			ExpectQuery("SELECT id FROM profiles where").
			WithArgs(address).
			WillReturnError(fmt.Errorf("sql: no rows in result set"))
		exists := r.Exists(address)
		assert.Equal(t, exists, false)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})
}

func TestGetAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	defer db.Close()
	r := NewProfileRepo(db)

	t.Run("should return profiles", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "address", "handle", "display_name"})
		expectedProfiles := []*Profile{
			{Id: "1", Address: "0x01", Handle: "one", DisplayName: "One"},
			{Id: "2", Address: "0x02", Handle: "two", DisplayName: "Two"},
			{Id: "3", Address: "0x03", Handle: "three", DisplayName: "Three"},
		}
		for _, p := range expectedProfiles {
			rows.AddRow(p.Id, p.Address, p.Handle, p.DisplayName)
		}
		mock.
			ExpectQuery("SELECT id, address, handle, display_name FROM profiles").
			WillReturnRows(rows)
		gotProfiles, err := r.GetAll()
		if err != nil {
			t.Errorf("unexpected err: %s", err)
			return
		}
		assert.Equal(t, expectedProfiles, gotProfiles)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should return DB error", func(t *testing.T) {
		expectedErr := fmt.Errorf("mock_db_error")
		mock.
			ExpectQuery("SELECT id, address, handle, display_name FROM profiles").
			WillReturnError(expectedErr)
		_, err = r.GetAll()
		assert.ErrorIs(t, err, expectedErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should return scan rows error", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id"}).AddRow("2")
		mock.
			ExpectQuery("SELECT id, address, handle, display_name FROM profiles").
			WillReturnRows(rows)
		_, err = r.GetAll()
		assert.ErrorContains(t, err, "scan")
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})
}
