package mocks

//go:generate mockery --name UsageStore --srcpkg github.com/tollgate-lab/tollgate/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Publisher --srcpkg github.com/tollgate-lab/tollgate/internal/ingestion --output ./ingestion --outpkg ingestionmocks --with-expecter
