package services

import (
	"context"
	"io"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
	"github.com/hackfest-dev/hackfest-server/storage"
)

// Programmable repository stubs. A nil function field means the call
// succeeds with zero values.

type fakeUserRepository struct {
	CreateFunc     func(ctx context.Context, user *models.User) error
	GetByIDFunc    func(ctx context.Context, id int) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	UpdateFunc     func(ctx context.Context, user *models.User) error
	ListFunc       func(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
}

func (f *fakeUserRepository) Create(ctx context.Context, user *models.User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	return nil
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return &models.User{ID: id, IsActive: true}, nil
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepository) Update(ctx context.Context, user *models.User) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, user)
	}
	return nil
}

func (f *fakeUserRepository) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, filter)
	}
	return nil, nil
}

type fakeTeamRepository struct {
	CreateFunc              func(ctx context.Context, team *models.Team) error
	GetByIDFunc             func(ctx context.Context, id int) (*models.Team, error)
	UpdateFunc              func(ctx context.Context, team *models.Team) error
	DeleteFunc              func(ctx context.Context, id int) error
	ListByHackathonFunc     func(ctx context.Context, hackathonID int) ([]models.Team, error)
	AddMemberFunc           func(ctx context.Context, member *models.TeamMember) error
	UpdateMemberFunc        func(ctx context.Context, member *models.TeamMember) error
	RemoveMemberFunc        func(ctx context.Context, memberID int) error
	ListMembersFunc         func(ctx context.Context, teamID int) ([]models.TeamMember, error)
	CountTeamsByUserFunc    func(ctx context.Context, userID int) (int, error)
	CountPendingInvitesFunc func(ctx context.Context, userID int) (int, error)
}

func (f *fakeTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, team)
	}
	team.ID = 1
	return nil
}

func (f *fakeTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepository) Update(ctx context.Context, team *models.Team) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, team)
	}
	return nil
}

func (f *fakeTeamRepository) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *fakeTeamRepository) ListByHackathon(ctx context.Context, hackathonID int) ([]models.Team, error) {
	if f.ListByHackathonFunc != nil {
		return f.ListByHackathonFunc(ctx, hackathonID)
	}
	return nil, nil
}

func (f *fakeTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	if f.AddMemberFunc != nil {
		return f.AddMemberFunc(ctx, member)
	}
	return nil
}

func (f *fakeTeamRepository) UpdateMember(ctx context.Context, member *models.TeamMember) error {
	if f.UpdateMemberFunc != nil {
		return f.UpdateMemberFunc(ctx, member)
	}
	return nil
}

func (f *fakeTeamRepository) RemoveMember(ctx context.Context, memberID int) error {
	if f.RemoveMemberFunc != nil {
		return f.RemoveMemberFunc(ctx, memberID)
	}
	return nil
}

func (f *fakeTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx, teamID)
	}
	return nil, nil
}

func (f *fakeTeamRepository) CountTeamsByUser(ctx context.Context, userID int) (int, error) {
	if f.CountTeamsByUserFunc != nil {
		return f.CountTeamsByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (f *fakeTeamRepository) CountPendingInvites(ctx context.Context, userID int) (int, error) {
	if f.CountPendingInvitesFunc != nil {
		return f.CountPendingInvitesFunc(ctx, userID)
	}
	return 0, nil
}

type fakeHackathonRepository struct {
	CreateFunc              func(ctx context.Context, h *models.Hackathon) error
	GetByIDFunc             func(ctx context.Context, id int) (*models.Hackathon, error)
	UpdateFunc              func(ctx context.Context, h *models.Hackathon) error
	DeleteFunc              func(ctx context.Context, id int) error
	ListFunc                func(ctx context.Context, filter repositories.HackathonFilter) ([]models.Hackathon, error)
	UpdateStatusFunc        func(ctx context.Context, id int, status models.HackathonStatus) error
	RegisterParticipantFunc func(ctx context.Context, hackathonID, userID int) error
	CountParticipantsFunc   func(ctx context.Context, hackathonID int) (int, error)
	IsParticipantFunc       func(ctx context.Context, hackathonID, userID int) (bool, error)
	ListParticipantIDsFunc  func(ctx context.Context, hackathonID int) ([]int, error)
	CountByParticipantFunc  func(ctx context.Context, userID int) (int, error)
}

func (f *fakeHackathonRepository) Create(ctx context.Context, h *models.Hackathon) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, h)
	}
	h.ID = 1
	return nil
}

func (f *fakeHackathonRepository) GetByID(ctx context.Context, id int) (*models.Hackathon, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrHackathonNotFound
}

func (f *fakeHackathonRepository) Update(ctx context.Context, h *models.Hackathon) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, h)
	}
	return nil
}

func (f *fakeHackathonRepository) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *fakeHackathonRepository) List(ctx context.Context, filter repositories.HackathonFilter) ([]models.Hackathon, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (f *fakeHackathonRepository) UpdateStatus(ctx context.Context, id int, status models.HackathonStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (f *fakeHackathonRepository) RegisterParticipant(ctx context.Context, hackathonID, userID int) error {
	if f.RegisterParticipantFunc != nil {
		return f.RegisterParticipantFunc(ctx, hackathonID, userID)
	}
	return nil
}

func (f *fakeHackathonRepository) CountParticipants(ctx context.Context, hackathonID int) (int, error) {
	if f.CountParticipantsFunc != nil {
		return f.CountParticipantsFunc(ctx, hackathonID)
	}
	return 0, nil
}

func (f *fakeHackathonRepository) IsParticipant(ctx context.Context, hackathonID, userID int) (bool, error) {
	if f.IsParticipantFunc != nil {
		return f.IsParticipantFunc(ctx, hackathonID, userID)
	}
	return false, nil
}

func (f *fakeHackathonRepository) ListParticipantIDs(ctx context.Context, hackathonID int) ([]int, error) {
	if f.ListParticipantIDsFunc != nil {
		return f.ListParticipantIDsFunc(ctx, hackathonID)
	}
	return nil, nil
}

func (f *fakeHackathonRepository) CountByParticipant(ctx context.Context, userID int) (int, error) {
	if f.CountByParticipantFunc != nil {
		return f.CountByParticipantFunc(ctx, userID)
	}
	return 0, nil
}

type fakeProjectRepository struct {
	CreateFunc          func(ctx context.Context, project *models.Project) error
	GetByIDFunc         func(ctx context.Context, id int) (*models.Project, error)
	UpdateFunc          func(ctx context.Context, project *models.Project) error
	DeleteFunc          func(ctx context.Context, id int) error
	ListByHackathonFunc func(ctx context.Context, hackathonID int) ([]models.Project, error)
	ListByUserFunc      func(ctx context.Context, userID int) ([]models.Project, error)
	AddMemberFunc       func(ctx context.Context, member *models.ProjectMember) error
	RemoveMemberFunc    func(ctx context.Context, projectID, userID int) error
	ListMembersFunc     func(ctx context.Context, projectID int) ([]models.ProjectMember, error)
}

func (f *fakeProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, project)
	}
	project.ID = 1
	return nil
}

func (f *fakeProjectRepository) GetByID(ctx context.Context, id int) (*models.Project, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrProjectNotFound
}

func (f *fakeProjectRepository) Update(ctx context.Context, project *models.Project) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, project)
	}
	return nil
}

func (f *fakeProjectRepository) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *fakeProjectRepository) ListByHackathon(ctx context.Context, hackathonID int) ([]models.Project, error) {
	if f.ListByHackathonFunc != nil {
		return f.ListByHackathonFunc(ctx, hackathonID)
	}
	return nil, nil
}

func (f *fakeProjectRepository) ListByUser(ctx context.Context, userID int) ([]models.Project, error) {
	if f.ListByUserFunc != nil {
		return f.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *fakeProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	if f.AddMemberFunc != nil {
		return f.AddMemberFunc(ctx, member)
	}
	return nil
}

func (f *fakeProjectRepository) RemoveMember(ctx context.Context, projectID, userID int) error {
	if f.RemoveMemberFunc != nil {
		return f.RemoveMemberFunc(ctx, projectID, userID)
	}
	return nil
}

func (f *fakeProjectRepository) ListMembers(ctx context.Context, projectID int) ([]models.ProjectMember, error) {
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx, projectID)
	}
	return nil, nil
}

type fakeSubmissionRepository struct {
	CreateFunc             func(ctx context.Context, sub *models.Submission) error
	GetByIDFunc            func(ctx context.Context, id int) (*models.Submission, error)
	GetByProjectIDFunc     func(ctx context.Context, projectID int) (*models.Submission, error)
	UpdateFunc             func(ctx context.Context, sub *models.Submission) error
	UpdateAverageScoreFunc func(ctx context.Context, id int, avg float64) error
	UpsertScoreFunc        func(ctx context.Context, score *models.JudgeScore) error
	ListScoresFunc         func(ctx context.Context, submissionID int) ([]models.JudgeScore, error)
	AppendVersionFunc      func(ctx context.Context, version *models.SubmissionVersion) error
	ListVersionsFunc       func(ctx context.Context, submissionID int) ([]models.SubmissionVersion, error)
}

func (f *fakeSubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, sub)
	}
	sub.ID = 1
	return nil
}

func (f *fakeSubmissionRepository) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrSubmissionNotFound
}

func (f *fakeSubmissionRepository) GetByProjectID(ctx context.Context, projectID int) (*models.Submission, error) {
	if f.GetByProjectIDFunc != nil {
		return f.GetByProjectIDFunc(ctx, projectID)
	}
	return nil, repositories.ErrSubmissionNotFound
}

func (f *fakeSubmissionRepository) Update(ctx context.Context, sub *models.Submission) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, sub)
	}
	return nil
}

func (f *fakeSubmissionRepository) UpdateAverageScore(ctx context.Context, id int, avg float64) error {
	if f.UpdateAverageScoreFunc != nil {
		return f.UpdateAverageScoreFunc(ctx, id, avg)
	}
	return nil
}

func (f *fakeSubmissionRepository) UpsertScore(ctx context.Context, score *models.JudgeScore) error {
	if f.UpsertScoreFunc != nil {
		return f.UpsertScoreFunc(ctx, score)
	}
	return nil
}

func (f *fakeSubmissionRepository) ListScores(ctx context.Context, submissionID int) ([]models.JudgeScore, error) {
	if f.ListScoresFunc != nil {
		return f.ListScoresFunc(ctx, submissionID)
	}
	return nil, nil
}

func (f *fakeSubmissionRepository) AppendVersion(ctx context.Context, version *models.SubmissionVersion) error {
	if f.AppendVersionFunc != nil {
		return f.AppendVersionFunc(ctx, version)
	}
	return nil
}

func (f *fakeSubmissionRepository) ListVersions(ctx context.Context, submissionID int) ([]models.SubmissionVersion, error) {
	if f.ListVersionsFunc != nil {
		return f.ListVersionsFunc(ctx, submissionID)
	}
	return nil, nil
}

type fakeNotificationRepository struct {
	CreateFunc        func(ctx context.Context, n *models.Notification) error
	ListByUserFunc    func(ctx context.Context, userID int, limit int) ([]models.Notification, error)
	MarkReadFunc      func(ctx context.Context, id, userID int) error
	MarkAllReadFunc   func(ctx context.Context, userID int) error
	DeleteFunc        func(ctx context.Context, id, userID int) error
	CountUnreadFunc   func(ctx context.Context, userID int) (int, error)
	DeleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (f *fakeNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepository) ListByUser(ctx context.Context, userID int, limit int) ([]models.Notification, error) {
	if f.ListByUserFunc != nil {
		return f.ListByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (f *fakeNotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	if f.MarkReadFunc != nil {
		return f.MarkReadFunc(ctx, id, userID)
	}
	return nil
}

func (f *fakeNotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	if f.MarkAllReadFunc != nil {
		return f.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (f *fakeNotificationRepository) Delete(ctx context.Context, id, userID int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id, userID)
	}
	return nil
}

func (f *fakeNotificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	if f.CountUnreadFunc != nil {
		return f.CountUnreadFunc(ctx, userID)
	}
	return 0, nil
}

func (f *fakeNotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if f.DeleteExpiredFunc != nil {
		return f.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

type fakeMessageRepository struct {
	CreateFunc              func(ctx context.Context, msg *models.Message) error
	GetByIDFunc             func(ctx context.Context, id int) (*models.Message, error)
	ListByRoomFunc          func(ctx context.Context, room string, limit int) ([]models.Message, error)
	SoftDeleteFunc          func(ctx context.Context, id int) error
	MarkDeliveredFunc       func(ctx context.Context, id int) error
	IncrementReplyCountFunc func(ctx context.Context, id int) error
}

func (f *fakeMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, msg)
	}
	msg.ID = 1
	return nil
}

func (f *fakeMessageRepository) GetByID(ctx context.Context, id int) (*models.Message, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMessageNotFound
}

func (f *fakeMessageRepository) ListByRoom(ctx context.Context, room string, limit int) ([]models.Message, error) {
	if f.ListByRoomFunc != nil {
		return f.ListByRoomFunc(ctx, room, limit)
	}
	return nil, nil
}

func (f *fakeMessageRepository) SoftDelete(ctx context.Context, id int) error {
	if f.SoftDeleteFunc != nil {
		return f.SoftDeleteFunc(ctx, id)
	}
	return nil
}

func (f *fakeMessageRepository) MarkDelivered(ctx context.Context, id int) error {
	if f.MarkDeliveredFunc != nil {
		return f.MarkDeliveredFunc(ctx, id)
	}
	return nil
}

func (f *fakeMessageRepository) IncrementReplyCount(ctx context.Context, id int) error {
	if f.IncrementReplyCountFunc != nil {
		return f.IncrementReplyCountFunc(ctx, id)
	}
	return nil
}

// fakeBroadcaster records room broadcasts for assertions.
type fakeBroadcaster struct {
	rooms    []string
	messages []interface{}
}

func (f *fakeBroadcaster) BroadcastToRoom(room string, message interface{}) {
	f.rooms = append(f.rooms, room)
	f.messages = append(f.messages, message)
}

// fakeMailer records outgoing mail.
type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendTeamInviteEmail(to, teamName string) error {
	f.sent = append(f.sent, to)
	return f.err
}

func (f *fakeMailer) SendSubmissionStatusEmail(to, projectName, status string) error {
	f.sent = append(f.sent, to)
	return f.err
}

// fakeUploader records uploads and deletes.
type fakeUploader struct {
	uploaded  []string
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://media.test/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://media.test/" + key
}
