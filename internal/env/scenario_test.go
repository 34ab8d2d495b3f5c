package env_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/termination"
)

var _ = Describe("Adversarial hover", func() {
	var (
		e     *env.TimeLimit
		inner *env.HoverEnv
		hover dynamo.Action
	)

	BeforeEach(func() {
		var err error
		e, err = env.Make("DroneHoverBulletEnvWithAdversary-v0", 42, nil)
		Expect(err).NotTo(HaveOccurred())
		inner = env.Unwrap(e).(*env.HoverEnv)
		hover = inner.HoverAction()
	})

	It("keeps every disturbance inside the configured box", func() {
		for i := 0; i < 300; i++ {
			res, err := e.Step(hover)
			Expect(err).NotTo(HaveOccurred())
			for axis, d := range res.Info.Disturbance {
				Expect(math.Abs(d)).To(BeNumerically("<=", adversary.DefaultBound[axis]))
			}
			if res.Done {
				_, err = e.Reset()
				Expect(err).NotTo(HaveOccurred())
			}
		}
	})

	It("never perturbs yaw", func() {
		for i := 0; i < 20; i++ {
			res, err := e.Step(hover)
			Expect(err).NotTo(HaveOccurred())
			Expect(inner.State().AngularVelocity.Z).To(BeNumerically("~", 0, 1e-9))
			if res.Done {
				break
			}
		}
	})

	It("produces finite observations of fixed size", func() {
		obs, err := e.Reset()
		Expect(err).NotTo(HaveOccurred())
		Expect(obs).To(HaveLen(dynamo.ObsDim))

		res, err := e.Step(hover)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Observation).To(HaveLen(dynamo.ObsDim))
		Expect(dynamo.State(res.Observation).IsValid()).To(BeTrue())
	})

	Context("when the drone falls out of the envelope", func() {
		BeforeEach(func() {
			opts := inner.Options()
			h, err := env.NewHoverEnv(opts, adversary.Constant{Torque: dynamo.Disturbance{0, -1e-3, 0}})
			Expect(err).NotTo(HaveOccurred())
			e, err = env.NewTimeLimit(h, env.DefaultMaxEpisodeSteps)
			Expect(err).NotTo(HaveOccurred())
			inner = h
		})

		It("latches done until reset", func() {
			var last env.StepResult
			for i := 0; i < env.DefaultMaxEpisodeSteps && !last.Done; i++ {
				res, err := e.Step(hover)
				Expect(err).NotTo(HaveOccurred())
				last = res
			}
			Expect(last.Done).To(BeTrue())

			Expect(last.Info.Reason).To(Equal(termination.Attitude))
			Expect(last.Info.TimeLimit).To(BeFalse())

			_, err := e.Step(hover)
			Expect(err).To(MatchError(dynamo.ErrEpisodeDone))

			_, err = e.Reset()
			Expect(err).NotTo(HaveOccurred())
			_, err = e.Step(hover)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

var _ = Describe("Termination boundaries", func() {
	policy := termination.Adversarial()
	deg := dynamo.DegToRad

	DescribeTable("Check",
		func(alt, roll, pitch, rollRate, pitchRate float64, want termination.Reason) {
			Expect(policy.Check(alt, roll, pitch, rollRate, pitchRate)).To(Equal(want))
		},
		Entry("altitude exactly at the floor", 0.2, 0.0, 0.0, 0.0, 0.0, termination.None),
		Entry("altitude just below the floor", 0.199, 0.0, 0.0, 0.0, 0.0, termination.Altitude),
		Entry("roll exactly at 75°", 1.0, deg(75), 0.0, 0.0, 0.0, termination.None),
		Entry("roll at 75.0001°", 1.0, deg(75.0001), 0.0, 0.0, 0.0, termination.Attitude),
		Entry("pitch rate exactly at 1000°/s", 1.0, 0.0, 0.0, 0.0, deg(1000), termination.None),
		Entry("pitch rate past 1000°/s", 1.0, 0.0, 0.0, 0.0, deg(1001), termination.Rate),
	)
})
