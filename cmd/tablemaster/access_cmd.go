package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/mappers"
	"github.com/tablemaster/tablemaster/modules/changes/services"
)

func newAccessCmd(admin *adminFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Review edit-access requests",
	}
	cmd.AddCommand(newAccessListCmd(admin))
	cmd.AddCommand(newAccessDecideCmd(admin))
	return cmd
}

func newAccessListCmd(admin *adminFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending access requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), admin)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := s.app.Service(services.AccessRequestService{}).(*services.AccessRequestService)
			reqs, err := svc.ListPending(s.ctx)
			if err != nil {
				return err
			}
			return writeJSON(mappers.AccessRequestsToResponses(reqs))
		},
	}
}

func newAccessDecideCmd(admin *adminFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "decide <id>",
		Short: "Approve or reject a pending access request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision := changerequest.Status(status)
			if !decision.IsDecision() {
				return fmt.Errorf("invalid --status %q: want approved or rejected", status)
			}
			s, err := openSession(cmd.Context(), admin)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := s.app.Service(services.AccessRequestService{}).(*services.AccessRequestService)
			current, err := svc.Get(s.ctx, args[0])
			if err != nil {
				return err
			}
			if !current.IsPending() {
				return fmt.Errorf("access request %s is already %s", current.ID, current.Status)
			}
			decided, err := svc.Decide(s.ctx, args[0], decision, changerequest.Reviewer{ID: admin.id, Email: admin.email})
			if err != nil {
				return err
			}
			return writeJSON(mappers.AccessRequestToResponse(decided))
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "approved or rejected (required)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
