package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldstock/models"
)

type Repo struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewRepo(db *gorm.DB, log *slog.Logger) *Repo {
	if log == nil {
		log = slog.Default()
	}
	return &Repo{DB: db, Log: log}
}

// --- Materials ---

func (r *Repo) CreateMaterial(ctx context.Context, scope OrgScope, code, name, mtype, uom string) (*models.Material, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("code", "required")
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, invalid("name", "required")
	}
	if uom == "" {
		uom = "pcs"
	}
	m := &models.Material{
		ID: uuid.NewString(), OrgID: scope.OrgID,
		Code: code, Name: name, Type: mtype, UOM: uom, Active: true,
	}
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("code", "already in use")
		}
		return nil, err
	}
	return m, nil
}

func (r *Repo) ListMaterials(ctx context.Context, scope OrgScope, includeInactive bool) ([]models.Material, error) {
	q := scope.Apply(r.DB.WithContext(ctx).Model(&models.Material{}), "org_id")
	if !includeInactive {
		q = q.Where("active")
	}
	var ms []models.Material
	err := q.Order("code").Find(&ms).Error
	return ms, err
}

// DeactivateMaterial soft-deletes a material; ledger rows keep referencing it.
func (r *Repo) DeactivateMaterial(ctx context.Context, scope OrgScope, id string) error {
	res := scope.Apply(r.DB.WithContext(ctx).Model(&models.Material{}), "org_id").
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// getActiveMaterial resolves a material reference for workflow validation.
func getActiveMaterial(tx *gorm.DB, scope OrgScope, id string) (*models.Material, error) {
	var m models.Material
	err := scope.Apply(tx, "org_id").
		Where("id = ? AND active", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("materialId", "unknown or inactive material")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Stock areas ---

func (r *Repo) CreateStockArea(ctx context.Context, scope OrgScope, name, code string) (*models.StockArea, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, invalid("name", "required")
	}
	a := &models.StockArea{ID: uuid.NewString(), OrgID: scope.OrgID, Name: name, Code: code, Active: true}
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) ListStockAreas(ctx context.Context, scope OrgScope) ([]models.StockArea, error) {
	var as []models.StockArea
	err := scope.Apply(r.DB.WithContext(ctx).Model(&models.StockArea{}), "org_id").
		Where("active").Order("name").Find(&as).Error
	return as, err
}

func getActiveStockArea(tx *gorm.DB, scope OrgScope, field, id string) (*models.StockArea, error) {
	var a models.StockArea
	err := scope.Apply(tx.Model(&models.StockArea{}), "org_id").
		Where("id = ? AND active", id).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid(field, "unknown or inactive stock area")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// --- Users ---

func (r *Repo) CreateUser(ctx context.Context, scope OrgScope, u *models.User) error {
	if u.Username = strings.TrimSpace(u.Username); u.Username == "" {
		return invalid("username", "required")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.OrgID = scope.OrgID
	u.Active = true
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return invalid("username", "already in use")
		}
		return err
	}
	return nil
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchUserLogin stamps a successful login.
func (r *Repo) TouchUserLogin(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", time.Now().UTC()).Error
}

func getActiveUser(tx *gorm.DB, scope OrgScope, field, id string) (*models.User, error) {
	var u models.User
	err := scope.Apply(tx.Model(&models.User{}), "org_id").
		Where("id = ? AND active", id).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid(field, "unknown or inactive user")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
