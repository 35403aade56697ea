package sprint

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/adapter/cli"
	focusDomain "github.com/starfocus/starfocus/internal/focus/domain"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
)

var (
	scoreMinutes  int
	scoreSwitches int
	scoreOpens    int
	scoreZone     string
	scoreWorkType string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Calculate a focus score without recording it",
	Long: `Calculate the focus score a sprint would earn. Nothing is stored.

Examples:
  starfocus sprint score --minutes 50
  starfocus sprint score --minutes 45 --switches 2 --opens 1
  starfocus sprint score --minutes 60 --zone red --work-type MULTIPLE_CHOICE`,
	RunE: func(cmd *cobra.Command, args []string) error {
		calc := focusDomain.NewScoreCalculator(focusDomain.DefaultScoreConfig())
		if app := cli.GetApp(); app != nil && app.Calculator != nil {
			calc = app.Calculator
		}

		input := focusDomain.ScoreInput{
			DeepWorkMinutes: scoreMinutes,
			AppSwitches:     scoreSwitches,
			ImpulseOpens:    scoreOpens,
		}
		if scoreZone != "" || scoreWorkType != "" {
			zone := value_objects.ZoneGreen
			if scoreZone != "" {
				z, err := value_objects.ParseZone(scoreZone)
				if err != nil {
					return err
				}
				zone = z
			}
			input.LinkedTask = &focusDomain.LinkedTask{
				TaskID:   uuid.Nil,
				Zone:     zone,
				WorkType: value_objects.ParseWorkType(scoreWorkType),
			}
		}

		score, err := calc.Score(input)
		if err != nil {
			return err
		}
		printScore(cmd.OutOrStdout(), score)
		return nil
	},
}

func init() {
	scoreCmd.Flags().IntVarP(&scoreMinutes, "minutes", "m", 0, "deep work minutes")
	scoreCmd.Flags().IntVar(&scoreSwitches, "switches", 0, "app switches during the sprint")
	scoreCmd.Flags().IntVar(&scoreOpens, "opens", 0, "impulse opens of blocked apps")
	scoreCmd.Flags().StringVar(&scoreZone, "zone", "", "zone of the linked task (red, amber, green)")
	scoreCmd.Flags().StringVar(&scoreWorkType, "work-type", "", "work type of the linked task (ASSIGNMENT, MULTIPLE_CHOICE, SHORT_ANSWER_QUESTION)")
}
