package main

type Project struct {
	Name    string
	Tagline string
	Summary string
	Stack   []string
}

var (
	AboutMe = `I'm a full stack engineer who likes turning rough ideas into products people
	actually use. Most of my work lives in Next.js and FastAPI, with PostgreSQL underneath and a
	lot of attention on the small interactions that make an interface feel fast.
	There's a terminal further down this page. Type help to get started.`

	Projects = []Project{
		{
			Name:    "DealFlow CRM",
			Tagline: "B2B Lead Intelligence Platform",
			Summary: `A lead pipeline for small sales teams with real-time collaboration, pipeline
	visualization and email integration, built and run solo from schema to deployment.`,
			Stack: []string{"Next.js", "FastAPI", "PostgreSQL", "Python"},
		},
		{
			Name:    "Portfolio 2026",
			Tagline: "Interactive SaaS-style portfolio",
			Summary: `This site: a 3D hero, a command palette and the god mode terminal,
	with a typing game tucked inside it.`,
			Stack: []string{"Next.js", "React", "Three.js", "Framer Motion"},
		},
		{
			Name:    "LinkHub",
			Tagline: "Open-source link-in-bio solution",
			Summary: `A self-hostable link page with per-link analytics, custom themes and
	QR code generation.`,
			Stack: []string{"Next.js", "PostgreSQL", "TypeScript", "Tailwind"},
		},
	}
)
