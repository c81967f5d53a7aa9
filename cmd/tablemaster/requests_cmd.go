package main

import (
	"github.com/spf13/cobra"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/mappers"
	"github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/pkg/composables"
)

func newRequestsCmd(admin *adminFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review pending change requests",
	}
	cmd.AddCommand(newRequestsListCmd(admin))
	cmd.AddCommand(newRequestsDecisionCmd(admin, changerequest.StatusApproved))
	cmd.AddCommand(newRequestsDecisionCmd(admin, changerequest.StatusRejected))
	return cmd
}

func newRequestsListCmd(admin *adminFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending change requests with their summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), admin)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := s.app.Service(services.ChangeRequestService{}).(*services.ChangeRequestService)
			reqs, err := svc.ListPending(s.ctx)
			if err != nil {
				return err
			}
			return writeJSON(mappers.ChangeRequestsToResponses(reqs, composables.UseLogger(s.ctx)))
		},
	}
}

func newRequestsDecisionCmd(admin *adminFlags, status changerequest.Status) *cobra.Command {
	var notes string
	use, short := "approve <id>", "Apply a pending change request and mark it approved"
	if status == changerequest.StatusRejected {
		use, short = "reject <id>", "Reject a pending change request"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), admin)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := s.app.Service(services.ChangeRequestService{}).(*services.ChangeRequestService)
			reviewer := changerequest.Reviewer{ID: admin.id, Email: admin.email}
			var decisionNotes *string
			if cmd.Flags().Changed("notes") {
				decisionNotes = &notes
			}

			var decided changerequest.ChangeRequest
			if status == changerequest.StatusApproved {
				decided, err = svc.ApproveAndApply(s.ctx, args[0], reviewer, decisionNotes)
			} else {
				decided, err = svc.Reject(s.ctx, args[0], reviewer, decisionNotes)
			}
			if err != nil {
				return err
			}
			return writeJSON(mappers.ChangeRequestToResponse(decided, composables.UseLogger(s.ctx)))
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Decision notes (default keeps the submitter's notes)")
	return cmd
}
