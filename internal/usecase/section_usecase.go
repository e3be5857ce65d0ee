package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/logger"
	"portfolio-admin-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// draftRestoreTimeout bounds putting a draft back after a background save
// failed, by which point the task's own context may be spent.
const draftRestoreTimeout = 5 * time.Second

var savedNoun = map[domain.Section]string{
	domain.SectionSkills:      "Skill",
	domain.SectionProjects:    "Project",
	domain.SectionExperience:  "Experience",
	domain.SectionCredentials: "Credential",
	domain.SectionContact:     "Contact",
}

type sectionUsecase struct {
	repo     domain.SectionRepository
	drafts   domain.DraftStore
	media    domain.MediaService
	queue    domain.TaskQueue
	validate *validator.Validate
	// background lists the sections whose upload and insert run on the queue.
	background map[domain.Section]bool
}

// NewSectionUsecase saves section forms. Sections in backgroundSections are
// validated inline and persisted by queue; queue may be nil when the list is empty.
func NewSectionUsecase(
	repo domain.SectionRepository,
	drafts domain.DraftStore,
	media domain.MediaService,
	queue domain.TaskQueue,
	validate *validator.Validate,
	backgroundSections ...domain.Section,
) domain.SectionUsecase {
	if validate == nil {
		validate = validation.Validator()
	}
	background := make(map[domain.Section]bool, len(backgroundSections))
	for _, s := range backgroundSections {
		background[s] = true
	}
	return &sectionUsecase{
		repo:       repo,
		drafts:     drafts,
		media:      media,
		queue:      queue,
		validate:   validate,
		background: background,
	}
}

func (u *sectionUsecase) Save(ctx context.Context, ownerID string, form domain.SectionForm) (*domain.SaveResult, error) {
	if ownerID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	section := form.Section()

	// Validation runs before any store or network call.
	if err := u.validate.Struct(form); err != nil {
		if appErr := validation.ValidationError(err); appErr != nil {
			return nil, appErr
		}
		return nil, apperror.BadRequest(err.Error())
	}

	successMsg := fmt.Sprintf("%s saved successfully!", savedNoun[section])

	if u.background[section] && u.queue != nil {
		// The task owns the values from here; a failed task puts them back.
		u.clearDraft(ctx, ownerID, section)
		taskID, err := u.queue.Enqueue("save_"+string(section), ownerID, func(ctx context.Context) error {
			if _, _, err := u.persist(ctx, ownerID, form); err != nil {
				u.restoreDraftUnlessNewer(ownerID, form)
				return err
			}
			return nil
		})
		if err != nil {
			u.restoreDraft(ctx, ownerID, form)
			return nil, apperror.Internal(err)
		}
		return &domain.SaveResult{
			Section: section,
			Mode:    domain.SaveModeBackground,
			TaskID:  taskID,
			Message: successMsg,
		}, nil
	}

	rowID, imageURL, err := u.persist(ctx, ownerID, form)
	if err != nil {
		// Keep what was typed so the save can be retried.
		u.restoreDraft(ctx, ownerID, form)
		return nil, err
	}
	u.clearDraft(ctx, ownerID, section)

	return &domain.SaveResult{
		Section:  section,
		Mode:     domain.SaveModeSync,
		RowID:    rowID,
		ImageURL: imageURL,
		Message:  successMsg,
	}, nil
}

// persist uploads the image, if the section has one, then inserts the row.
func (u *sectionUsecase) persist(ctx context.Context, ownerID string, form domain.SectionForm) (int64, string, error) {
	section := form.Section()

	var imageURL string
	if section.HasImage() {
		url, err := u.media.UploadImage(ctx, ownerID, section, form.Image())
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				return 0, "", appErr
			}
			return 0, "", apperror.UploadFailed(err)
		}
		imageURL = url
	}

	rowID, err := u.repo.Insert(ctx, form.Row(ownerID, imageURL))
	if err != nil {
		return 0, "", apperror.Internal(err)
	}
	logger.Log.Info("section row saved", "section", section, "row_id", rowID)
	return rowID, imageURL, nil
}

func (u *sectionUsecase) clearDraft(ctx context.Context, ownerID string, section domain.Section) {
	if err := u.drafts.Delete(ctx, ownerID, section); err != nil {
		logger.Log.Warn("failed to clear draft", "section", section, "error", err)
	}
}

func (u *sectionUsecase) restoreDraft(ctx context.Context, ownerID string, form domain.SectionForm) {
	if err := u.drafts.Put(ctx, ownerID, form.Section(), form.Values()); err != nil {
		logger.Log.Warn("failed to restore draft", "section", form.Section(), "error", err)
	}
}

// restoreDraftUnlessNewer puts the values of a failed background save back,
// unless the admin stored another draft for the section since the 202.
func (u *sectionUsecase) restoreDraftUnlessNewer(ownerID string, form domain.SectionForm) {
	ctx, cancel := context.WithTimeout(context.Background(), draftRestoreTimeout)
	defer cancel()

	current, err := u.drafts.Get(ctx, ownerID, form.Section())
	if err != nil {
		logger.Log.Warn("failed to read draft before restoring", "section", form.Section(), "error", err)
	}
	if len(current) > 0 {
		logger.Log.Info("kept newer draft over failed save", "section", form.Section())
		return
	}
	u.restoreDraft(ctx, ownerID, form)
}

func (u *sectionUsecase) List(ctx context.Context, ownerID string, section domain.Section) ([]map[string]any, error) {
	if ownerID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	rows, err := u.repo.List(ctx, section, ownerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return rows, nil
}

func (u *sectionUsecase) GetDraft(ctx context.Context, ownerID string, section domain.Section) (map[string]string, error) {
	values, err := u.drafts.Get(ctx, ownerID, section)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (u *sectionUsecase) PutDraft(ctx context.Context, ownerID string, section domain.Section, values map[string]string) error {
	// Normalise through the form so unknown keys are dropped.
	form, err := domain.FormFromValues(section, values)
	if err != nil {
		return apperror.NotFound(err.Error())
	}
	if err := u.drafts.Put(ctx, ownerID, section, form.Values()); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *sectionUsecase) DiscardDraft(ctx context.Context, ownerID string, section domain.Section) error {
	if err := u.drafts.Delete(ctx, ownerID, section); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
