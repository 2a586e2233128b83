package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/expression"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// viewEntity describes one queryable entity: its table, the columns a filter
// expression may reference, and the columns a view may sort on.
type viewEntity struct {
	table      string
	baseClause string
	filterable []string
	sortable   map[string]bool
}

// viewEntities whitelists what a saved view can query. Tables with soft
// delete carry is_deleted = 0 as a base clause so views never surface
// trashed rows. The cars `condition` column is absent from the filter list
// because it is a reserved word and the compiler emits identifiers bare.
var viewEntities = map[string]viewEntity{
	"cars": {
		table:      constants.TableCars,
		baseClause: "is_deleted = 0",
		filterable: []string{
			"make", "model", "year", "trim", "vin", "color", "interior_color",
			"mileage", "mileage_unit", "price_asking", "price_sold", "engine",
			"transmission", "horsepower", "status", "location",
			"client_contact_id", "created_at", "updated_at",
		},
		sortable: map[string]bool{
			"created_at": true, "updated_at": true, "year": true, "make": true,
			"model": true, "price_asking": true, "mileage": true, "status": true,
		},
	},
	"contacts": {
		table:      constants.TableContacts,
		baseClause: "is_deleted = 0",
		filterable: []string{
			"first_name", "last_name", "email", "phone", "company", "role",
			"status", "created_at", "updated_at",
		},
		sortable: map[string]bool{
			"first_name": true, "last_name": true, "company": true,
			"role": true, "created_at": true, "updated_at": true,
		},
	},
	"deliverables": {
		table:      constants.TableDeliverables,
		baseClause: "is_deleted = 0",
		filterable: []string{
			"car_id", "title", "platform", "media_type_id", "type",
			"aspect_ratio", "duration_sec", "edit_status", "editor",
			"release_date", "scheduled_post_at", "created_at", "updated_at",
		},
		sortable: map[string]bool{
			"title": true, "platform": true, "edit_status": true,
			"release_date": true, "scheduled_post_at": true,
			"created_at": true, "updated_at": true,
		},
	},
	"events": {
		table:      constants.TableEvents,
		baseClause: "1 = 1",
		filterable: []string{
			"car_id", "project_id", "title", "event_type", "status",
			"location", "start_at", "end_at", "all_day",
			"assignee_contact_id", "reminder_minutes", "created_at",
		},
		sortable: map[string]bool{
			"start_at": true, "end_at": true, "title": true,
			"event_type": true, "status": true, "created_at": true,
		},
	},
	"projects": {
		table:      constants.TableProjects,
		baseClause: "is_deleted = 0",
		filterable: []string{
			"title", "status", "client_contact_id", "starts_on", "due_on",
			"created_at", "updated_at",
		},
		sortable: map[string]bool{
			"title": true, "status": true, "starts_on": true, "due_on": true,
			"created_at": true, "updated_at": true,
		},
	},
	"inventory_items": {
		table:      constants.TableInventoryItems,
		baseClause: "1 = 1",
		filterable: []string{
			"container_id", "name", "category", "manufacturer", "model_number",
			"serial_number", "quantity", "item_condition", "checked_out_to",
			"checked_out_at", "created_at", "updated_at",
		},
		sortable: map[string]bool{
			"name": true, "category": true, "quantity": true,
			"checked_out_at": true, "created_at": true, "updated_at": true,
		},
	},
}

// ViewEntityNames returns the entities a saved view may target
func ViewEntityNames() []string {
	names := make([]string, 0, len(viewEntities))
	for name := range viewEntities {
		names = append(names, name)
	}
	return names
}

func normalizeSortDir(dir string) (string, bool) {
	switch strings.ToLower(dir) {
	case "", "asc":
		return "ASC", true
	case "desc":
		return "DESC", true
	}
	return "", false
}

// SavedViewService manages per-user saved filters and executes them
type SavedViewService struct {
	views *persistence.SavedViewRepository
}

// NewSavedViewService creates a new SavedViewService
func NewSavedViewService(views *persistence.SavedViewRepository) *SavedViewService {
	return &SavedViewService{views: views}
}

// SavedViewRequest carries the writable fields of a saved view
type SavedViewRequest struct {
	Entity     *string `json:"entity"`
	Name       *string `json:"name"`
	FilterExpr *string `json:"filter_expr"`
	SortField  *string `json:"sort_field"`
	SortDir    *string `json:"sort_dir"`
}

// CreateView stores a new view for ownerID. The filter expression is
// compiled here so a broken view is rejected at save time, not at run time.
func (s *SavedViewService) CreateView(ctx context.Context, ownerID string, req SavedViewRequest) (*models.SavedView, error) {
	if req.Entity == nil || *req.Entity == "" {
		return nil, errors.NewValidationError("entity", "Entity is required")
	}
	meta, ok := viewEntities[*req.Entity]
	if !ok {
		return nil, errors.NewValidationError("entity", fmt.Sprintf("Unknown entity: %s", *req.Entity))
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, errors.NewValidationError("name", "Name is required")
	}

	filterExpr := ""
	if req.FilterExpr != nil && strings.TrimSpace(*req.FilterExpr) != "" {
		filterExpr = strings.TrimSpace(*req.FilterExpr)
		if _, _, err := expression.ToSQLForFields(filterExpr, meta.filterable); err != nil {
			return nil, errors.NewValidationError("filter_expr", err.Error())
		}
	}

	var sortField, sortDir *string
	if req.SortField != nil && *req.SortField != "" {
		if !meta.sortable[*req.SortField] {
			return nil, errors.NewValidationError("sort_field", fmt.Sprintf("Cannot sort %s by %s", *req.Entity, *req.SortField))
		}
		sortField = req.SortField
	}
	if req.SortDir != nil && *req.SortDir != "" {
		dir, ok := normalizeSortDir(*req.SortDir)
		if !ok {
			return nil, errors.NewValidationError("sort_dir", "Sort direction must be asc or desc")
		}
		lower := strings.ToLower(dir)
		sortDir = &lower
	}

	v := &models.SavedView{
		ID:         utils.GenerateID(),
		OwnerID:    ownerID,
		Entity:     *req.Entity,
		Name:       strings.TrimSpace(*req.Name),
		FilterExpr: filterExpr,
		SortField:  sortField,
		SortDir:    sortDir,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.views.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create saved view: %w", err)
	}

	log.Printf("✅ Saved view created: %s over %s", v.Name, v.Entity)
	return v, nil
}

// GetView fetches one view. Views belonging to another owner read as
// missing rather than forbidden, so view ids do not leak across users.
func (s *SavedViewService) GetView(ctx context.Context, ownerID, id string) (*models.SavedView, error) {
	v, err := s.views.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || v.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("Saved view", id)
	}
	return v, nil
}

// ListViews returns the owner's views, optionally for one entity
func (s *SavedViewService) ListViews(ctx context.Context, ownerID, entity string) ([]*models.SavedView, error) {
	if entity != "" {
		if _, ok := viewEntities[entity]; !ok {
			return nil, errors.NewValidationError("entity", fmt.Sprintf("Unknown entity: %s", entity))
		}
	}
	return s.views.ListByOwner(ctx, ownerID, entity)
}

// UpdateView applies a partial update. The entity is fixed at creation;
// retargeting a view would silently invalidate its filter and sort fields.
func (s *SavedViewService) UpdateView(ctx context.Context, ownerID, id string, req SavedViewRequest) (*models.SavedView, error) {
	v, err := s.GetView(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Entity != nil && *req.Entity != v.Entity {
		return nil, errors.NewValidationError("entity", "Entity cannot be changed")
	}
	meta := viewEntities[v.Entity]

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "Name cannot be empty")
		}
		updates["name"] = name
	}
	if req.FilterExpr != nil {
		filterExpr := strings.TrimSpace(*req.FilterExpr)
		if filterExpr != "" {
			if _, _, err := expression.ToSQLForFields(filterExpr, meta.filterable); err != nil {
				return nil, errors.NewValidationError("filter_expr", err.Error())
			}
		}
		updates["filter_expr"] = filterExpr
	}
	if req.SortField != nil {
		if *req.SortField != "" && !meta.sortable[*req.SortField] {
			return nil, errors.NewValidationError("sort_field", fmt.Sprintf("Cannot sort %s by %s", v.Entity, *req.SortField))
		}
		updates["sort_field"] = nullable(*req.SortField)
	}
	if req.SortDir != nil {
		if *req.SortDir == "" {
			updates["sort_dir"] = nil
		} else {
			dir, ok := normalizeSortDir(*req.SortDir)
			if !ok {
				return nil, errors.NewValidationError("sort_dir", "Sort direction must be asc or desc")
			}
			updates["sort_dir"] = strings.ToLower(dir)
		}
	}

	if len(updates) == 0 {
		return v, nil
	}
	if err := s.views.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update saved view: %w", err)
	}
	return s.views.GetByID(ctx, id)
}

// DeleteView removes a view
func (s *SavedViewService) DeleteView(ctx context.Context, ownerID, id string) error {
	v, err := s.GetView(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.views.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete saved view: %w", err)
	}
	log.Printf("🗑️ Saved view deleted: %s", v.Name)
	return nil
}

// ViewResult is one execution of a saved view
type ViewResult struct {
	View  *models.SavedView        `json:"view"`
	Rows  []map[string]interface{} `json:"rows"`
	Count int                      `json:"count"`
}

// RunView compiles the stored filter to SQL and executes it with the
// view's sort order and a clamped row limit.
func (s *SavedViewService) RunView(ctx context.Context, ownerID, id string, limit int) (*ViewResult, error) {
	v, err := s.GetView(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	meta, ok := viewEntities[v.Entity]
	if !ok {
		return nil, errors.NewInternalError(fmt.Sprintf("saved view %s targets unknown entity %s", v.ID, v.Entity), nil)
	}

	whereSQL := meta.baseClause
	var args []interface{}
	if v.FilterExpr != "" {
		compiled, compiledArgs, err := expression.ToSQLForFields(v.FilterExpr, meta.filterable)
		if err != nil {
			return nil, errors.NewValidationError("filter_expr", err.Error())
		}
		whereSQL = fmt.Sprintf("%s AND (%s)", meta.baseClause, compiled)
		args = compiledArgs
	}

	sortField, sortDir := "", "ASC"
	if v.SortField != nil && *v.SortField != "" && meta.sortable[*v.SortField] {
		sortField = *v.SortField
		if v.SortDir != nil {
			if dir, ok := normalizeSortDir(*v.SortDir); ok {
				sortDir = dir
			}
		}
	}

	if limit <= 0 {
		limit = constants.ViewDefaultLimit
	}
	if limit > constants.ViewMaxLimit {
		limit = constants.ViewMaxLimit
	}

	rows, err := s.views.RunFiltered(ctx, meta.table, whereSQL, args, sortField, sortDir, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run saved view: %w", err)
	}
	return &ViewResult{View: v, Rows: rows, Count: len(rows)}, nil
}
